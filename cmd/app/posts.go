package main

import (
	"fmt"
	"net/http"

	"github.com/sushihentaime/inkwell/internal/common"
	"github.com/sushihentaime/inkwell/internal/postservice"
)

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := app.readPageParam(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	result, err := app.postService.ListPosts(r.Context(), page)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": result.Posts, "metadata": result.Metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input postservice.CreatePostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	input.AuthorID = app.getUserContext(r).ID

	post, err := app.postService.CreatePost(r.Context(), &input)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/posts/%d", post.ID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"post": post}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) showPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	post, err := app.postService.GetPost(r.Context(), id)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// postForm holds the fields of a post in the shape the update endpoint accepts.
type postForm struct {
	Name    string                    `json:"name"`
	Live    bool                      `json:"live"`
	Content []postservice.ContentItem `json:"content"`
}

func newPostForm(p *postservice.Post) postForm {
	form := postForm{
		Name:    p.Name,
		Live:    p.IsLive(),
		Content: make([]postservice.ContentItem, len(p.Content)),
	}

	for i, b := range p.Content {
		id := b.ID
		form.Content[i] = postservice.ContentItem{ID: &id, Body: b.Body}
	}

	return form
}

func (app *application) editPostHandler(w http.ResponseWriter, r *http.Request) {
	post, ok := app.ownedPost(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, envelope{"post": post, "form": newPostForm(post)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	current, ok := app.ownedPost(w, r)
	if !ok {
		return
	}

	var input postservice.UpdatePostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	input.ID = current.ID

	post, err := app.postService.UpdatePost(r.Context(), &input)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	post, ok := app.ownedPost(w, r)
	if !ok {
		return
	}

	err := app.postService.DeletePost(r.Context(), post.ID)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "post deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type syncContentRequest struct {
	Content postservice.ContentList `json:"content"`
}

func (app *application) syncContentHandler(w http.ResponseWriter, r *http.Request) {
	post, ok := app.ownedPost(w, r)
	if !ok {
		return
	}

	var input syncContentRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	v := common.NewValidator()
	v.Check(input.Content.Present, "content", "must be provided")
	postservice.ValidateContent(v, input.Content)
	if !v.Valid() {
		app.failedValidationErrorResponse(w, r, v.Errors)
		return
	}

	blocks, err := app.postService.SyncContent(r.Context(), post.ID, input.Content.Items)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"content": blocks}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// ownedPost loads the post named in the URL and checks that the current user wrote it.
// It writes the error response itself and reports false when the request should stop.
func (app *application) ownedPost(w http.ResponseWriter, r *http.Request) (*postservice.Post, bool) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return nil, false
	}

	post, err := app.postService.GetPost(r.Context(), id)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return nil, false
	}

	if post.AuthorID != app.getUserContext(r).ID {
		app.notPermittedResponse(w, r)
		return nil, false
	}

	return post, true
}
