package postservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intptr(i int) *int {
	return &i
}

func bodies(blocks []ContentBlock) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Body
	}
	return out
}

func positions(blocks []ContentBlock) []int {
	out := make([]int, len(blocks))
	for i, b := range blocks {
		out[i] = b.Position
	}
	return out
}

func TestPlanSync(t *testing.T) {
	current := []ContentBlock{
		{ID: 10, PostID: 1, Position: 0, Body: "A"},
		{ID: 11, PostID: 1, Position: 1, Body: "B"},
		{ID: 12, PostID: 1, Position: 2, Body: "C"},
	}

	testCases := []struct {
		name          string
		current       []ContentBlock
		submitted     []ContentItem
		wantBodies    []string
		wantDeletes   []int
		wantUpdates   []int
		wantInserts   []int
		wantIDs       []int
		wantPositions []int
	}{
		{
			name:          "new post",
			current:       nil,
			submitted:     []ContentItem{{Body: "A"}, {Body: "B"}},
			wantBodies:    []string{"A", "B"},
			wantInserts:   []int{0, 1},
			wantIDs:       []int{0, 0},
			wantPositions: []int{0, 1},
		},
		{
			name:          "identical submission writes nothing",
			current:       current,
			submitted:     []ContentItem{{ID: intptr(10), Body: "A"}, {ID: intptr(11), Body: "B"}, {ID: intptr(12), Body: "C"}},
			wantBodies:    []string{"A", "B", "C"},
			wantIDs:       []int{10, 11, 12},
			wantPositions: []int{0, 1, 2},
		},
		{
			name:          "update, insert and delete",
			current:       current[:2],
			submitted:     []ContentItem{{ID: intptr(11), Body: "B2"}, {Body: "C"}},
			wantBodies:    []string{"B2", "C"},
			wantDeletes:   []int{10},
			wantUpdates:   []int{0},
			wantInserts:   []int{1},
			wantIDs:       []int{11, 0},
			wantPositions: []int{0, 1},
		},
		{
			name:          "remove middle block renumbers",
			current:       current,
			submitted:     []ContentItem{{ID: intptr(10), Body: "A"}, {ID: intptr(12), Body: "C"}},
			wantBodies:    []string{"A", "C"},
			wantDeletes:   []int{11},
			wantUpdates:   []int{1},
			wantIDs:       []int{10, 12},
			wantPositions: []int{0, 1},
		},
		{
			name:          "reorder",
			current:       current,
			submitted:     []ContentItem{{ID: intptr(12), Body: "C"}, {ID: intptr(10), Body: "A"}, {ID: intptr(11), Body: "B"}},
			wantBodies:    []string{"C", "A", "B"},
			wantUpdates:   []int{0, 1, 2},
			wantIDs:       []int{12, 10, 11},
			wantPositions: []int{0, 1, 2},
		},
		{
			name:          "unknown id is inserted",
			current:       current[:1],
			submitted:     []ContentItem{{ID: intptr(999), Body: "X"}},
			wantBodies:    []string{"X"},
			wantDeletes:   []int{10},
			wantInserts:   []int{0},
			wantIDs:       []int{0},
			wantPositions: []int{0},
		},
		{
			name:          "repeated id updates once then inserts",
			current:       current[:1],
			submitted:     []ContentItem{{ID: intptr(10), Body: "A"}, {ID: intptr(10), Body: "A again"}},
			wantBodies:    []string{"A", "A again"},
			wantInserts:   []int{1},
			wantIDs:       []int{10, 0},
			wantPositions: []int{0, 1},
		},
		{
			name:          "empty submission deletes everything",
			current:       current,
			submitted:     []ContentItem{},
			wantBodies:    []string{},
			wantDeletes:   []int{10, 11, 12},
			wantIDs:       []int{},
			wantPositions: []int{},
		},
		{
			name:          "bodies are stored as given",
			current:       nil,
			submitted:     []ContentItem{{Body: "  <b>hi</b>\n"}},
			wantBodies:    []string{"  <b>hi</b>\n"},
			wantInserts:   []int{0},
			wantIDs:       []int{0},
			wantPositions: []int{0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			plan := planSync(1, tc.current, tc.submitted)

			assert.Equal(t, tc.wantBodies, bodies(plan.blocks))
			assert.Equal(t, tc.wantPositions, positions(plan.blocks))
			assert.Equal(t, tc.wantDeletes, plan.deletes)
			assert.Equal(t, tc.wantUpdates, plan.updates)
			assert.Equal(t, tc.wantInserts, plan.inserts)

			ids := make([]int, len(plan.blocks))
			for i, b := range plan.blocks {
				ids[i] = b.ID
				assert.Equal(t, 1, b.PostID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestPlanSyncIsStable(t *testing.T) {
	current := []ContentBlock{{ID: 1, PostID: 3, Position: 0, Body: "x"}}
	submitted := []ContentItem{{ID: intptr(1), Body: "y"}, {Body: "z"}}

	first := planSync(3, current, submitted)

	// pretend the plan was applied, then plan the same submission again
	applied := make([]ContentBlock, len(first.blocks))
	copy(applied, first.blocks)
	applied[1].ID = 2
	submitted[1].ID = intptr(2)

	second := planSync(3, applied, submitted)
	assert.Empty(t, second.deletes)
	assert.Empty(t, second.updates)
	assert.Empty(t, second.inserts)
}

func TestUnknownIDs(t *testing.T) {
	current := []ContentBlock{{ID: 1}, {ID: 2}}
	submitted := []ContentItem{
		{ID: intptr(1)},
		{ID: intptr(5)},
		{Body: "new"},
		{ID: intptr(5)},
		{ID: intptr(7)},
	}

	assert.Equal(t, []int{5, 7}, unknownIDs(current, submitted))
	assert.Nil(t, unknownIDs(current, []ContentItem{{ID: intptr(2)}}))
}

func TestCalculateMetadata(t *testing.T) {
	assert.Equal(t, Metadata{}, calculateMetadata(0, 1, PageSize))
	assert.Equal(t, Metadata{CurrentPage: 2, PageSize: 5, FirstPage: 1, LastPage: 3, TotalRecords: 11}, calculateMetadata(11, 2, PageSize))
	assert.Equal(t, 1, calculateMetadata(5, 1, PageSize).LastPage)
}
