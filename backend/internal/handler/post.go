package handler

import (
	"net/http"

	"github.com/postboard/postboard/shared/api"
	"github.com/postboard/postboard/shared/domain"
	"github.com/postboard/postboard/shared/utils"
)

// Post handlers run behind the auth guard and receive the caller explicitly.

func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request, user domain.User) {
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	skip, err := parseIntQuery(r, "skip", 0)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	posts, err := h.posts.List(r.Context(), user, domain.PostFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: skip,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.NewPostsResponse(posts))
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request, user domain.User) {
	var body api.PostRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), user, domain.PostCreationData{
		Title:     body.Title,
		Content:   body.Content,
		Published: body.IsPublished(),
		OwnerId:   user.Id,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, api.NewPostResponse(post))
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, err := parseIdParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.posts.Get(r.Context(), user, id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.NewPostResponse(post))
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, err := parseIdParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	var body api.PostRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.posts.Update(r.Context(), user, domain.PostUpdateData{
		Id:        id,
		Title:     body.Title,
		Content:   body.Content,
		Published: body.IsPublished(),
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusAccepted, api.NewPostResponse(post))
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request, user domain.User) {
	id, err := parseIdParam(r, "id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.posts.Delete(r.Context(), user, id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
