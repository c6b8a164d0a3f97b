package postservice

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/sushihentaime/inkwell/internal/common"
)

type MockMessageProducer struct {
	mock.Mock
}

func (m *MockMessageProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	args := m.Called(ctx, msg, key, exchange)
	return args.Error(0)
}

func newMockProducer() *MockMessageProducer {
	mb := new(MockMessageProducer)
	mb.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return mb
}

func (m *MockMessageProducer) published(key common.BindingKey) int {
	n := 0
	for _, call := range m.Calls {
		if call.Method == "Publish" && call.Arguments.Get(2) == key {
			n++
		}
	}
	return n
}
