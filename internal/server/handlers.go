package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"driftline/internal/domain"
	"driftline/internal/feed"
	"driftline/internal/repository"
	"driftline/internal/transport/httpdto"
	driftline_errors "driftline/pkg/errors"
)

// Handlers exposes the document API the client library consumes. Every
// mutation is echoed through the publisher so realtime subscribers see it.
type Handlers struct {
	messages *repository.PostgresMessageRepository
	chats    *repository.PostgresChatRepository
	posts    *repository.PostgresPostRepository
	profiles *repository.PostgresProfileRepository
	pub      *Publisher
}

func NewHandlers(messages *repository.PostgresMessageRepository, chats *repository.PostgresChatRepository, posts *repository.PostgresPostRepository, profiles *repository.PostgresProfileRepository, pub *Publisher) *Handlers {
	return &Handlers{messages: messages, chats: chats, posts: posts, profiles: profiles, pub: pub}
}

// --- messages ---

func (h *Handlers) ListMessages(c *gin.Context) {
	chatID := c.Query("chat_id")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("chat_id is required", "INVALID_REQUEST"))
		return
	}
	chat, err := h.chats.GetByID(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !chat.HasParticipant(currentUserID(c)) {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
		return
	}

	messages, err := h.messages.ListByChat(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.MessageListResponse{Messages: messages}))
}

func (h *Handlers) GetMessage(c *gin.Context) {
	msg, err := h.messages.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(msg))
}

func (h *Handlers) CreateMessage(c *gin.Context) {
	var msg domain.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message document", "INVALID_REQUEST"))
		return
	}
	if msg.ID == "" || msg.ChatID == "" || msg.SenderID == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("message id, chat id and sender are required", "INVALID_REQUEST"))
		return
	}
	if msg.SenderID != currentUserID(c) {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
		return
	}
	if msg.Reactions == nil {
		msg.Reactions = domain.StringList{}
	}

	if err := h.messages.Create(c.Request.Context(), &msg); err != nil {
		respondError(c, err)
		return
	}
	h.pub.Publish(c.Request.Context(), feed.ChannelMessages, feed.EventTypeMessageCreated, msg.ID, msg)
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(msg))
}

func (h *Handlers) PatchMessage(c *gin.Context) {
	var req httpdto.PatchMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid patch", "INVALID_REQUEST"))
		return
	}
	id := c.Param("id")
	ctx := c.Request.Context()

	if req.Content != nil {
		if err := h.messages.UpdateContent(ctx, id, *req.Content); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Reactions != nil {
		if err := h.messages.UpdateReactions(ctx, id, *req.Reactions); err != nil {
			respondError(c, err)
			return
		}
	}

	msg, err := h.messages.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.pub.Publish(ctx, feed.ChannelMessages, feed.EventTypeMessageUpdated, msg.ID, msg)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(msg))
}

func (h *Handlers) DeleteMessage(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	msg, err := h.messages.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.messages.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	h.pub.Publish(ctx, feed.ChannelMessages, feed.EventTypeMessageDeleted, id, msg)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": id}))
}

// --- chats ---

func (h *Handlers) ListChats(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = currentUserID(c)
	}
	chats, err := h.chats.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ChatListResponse{Chats: chats}))
}

func (h *Handlers) GetChatBetween(c *gin.Context) {
	chat, err := h.chats.GetBetween(c.Request.Context(), c.Query("user_a"), c.Query("user_b"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(chat))
}

func (h *Handlers) GetChat(c *gin.Context) {
	chat, err := h.chats.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(chat))
}

func (h *Handlers) CreateChat(c *gin.Context) {
	var chat domain.Chat
	if err := c.ShouldBindJSON(&chat); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid chat document", "INVALID_REQUEST"))
		return
	}
	if chat.ID == "" || len(chat.Participants) != 2 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("chat id and two participants are required", "INVALID_REQUEST"))
		return
	}
	if !chat.HasParticipant(currentUserID(c)) {
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
		return
	}

	// Reject a duplicate thread between the same pair.
	if _, err := h.chats.GetBetween(c.Request.Context(), chat.Participants[0], chat.Participants[1]); err == nil {
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse("chat already exists", "CONFLICT"))
		return
	}

	if err := h.chats.Create(c.Request.Context(), &chat); err != nil {
		respondError(c, err)
		return
	}
	h.pub.Publish(c.Request.Context(), feed.ChannelChats, feed.EventTypeChatCreated, chat.ID, chat)
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(chat))
}

// --- posts ---

func (h *Handlers) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		posts []domain.Post
		err   error
	)
	if userID := c.Query("user_id"); userID != "" {
		posts, err = h.posts.ListByUser(ctx, userID)
	} else {
		posts, err = h.posts.ListActive(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.PostListResponse{Posts: posts}))
}

func (h *Handlers) GetPost(c *gin.Context) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(post))
}

func (h *Handlers) CreatePost(c *gin.Context) {
	var post domain.Post
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid post document", "INVALID_REQUEST"))
		return
	}
	if post.ID == "" || post.UserID == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("post id and user id are required", "INVALID_REQUEST"))
		return
	}
	if err := h.posts.Create(c.Request.Context(), &post); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(post))
}

func (h *Handlers) UpdatePost(c *gin.Context) {
	var post domain.Post
	if err := c.ShouldBindJSON(&post); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid post document", "INVALID_REQUEST"))
		return
	}
	post.ID = c.Param("id")
	if err := h.posts.Update(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(post))
}

func (h *Handlers) PatchPost(c *gin.Context) {
	var req httpdto.PatchPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid patch", "INVALID_REQUEST"))
		return
	}
	id := c.Param("id")
	ctx := c.Request.Context()

	if req.Likes != nil {
		if err := h.posts.UpdateLikes(ctx, id, *req.Likes); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Comments != nil {
		if err := h.posts.UpdateComments(ctx, id, *req.Comments); err != nil {
			respondError(c, err)
			return
		}
	}

	post, err := h.posts.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(post))
}

func (h *Handlers) DeletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"deleted": c.Param("id")}))
}

// --- profiles ---

func (h *Handlers) CreateProfile(c *gin.Context) {
	var profile domain.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid profile document", "INVALID_REQUEST"))
		return
	}
	if profile.ID == "" || profile.UserID == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("profile id and user id are required", "INVALID_REQUEST"))
		return
	}
	if err := h.profiles.Create(c.Request.Context(), &profile); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(profile))
}

func (h *Handlers) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetByUserID(c.Request.Context(), c.Param("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(profile))
}

func (h *Handlers) UpdateProfile(c *gin.Context) {
	var profile domain.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid profile document", "INVALID_REQUEST"))
		return
	}
	profile.UserID = c.Param("userID")
	if err := h.profiles.Update(c.Request.Context(), profile); err != nil {
		respondError(c, err)
		return
	}
	h.pub.Publish(c.Request.Context(), feed.ChannelProfiles, feed.EventTypeProfileUpdated, profile.UserID, profile)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(profile))
}

func (h *Handlers) PatchProfile(c *gin.Context) {
	var req httpdto.PatchProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid patch", "INVALID_REQUEST"))
		return
	}
	userID := c.Param("userID")
	ctx := c.Request.Context()

	if req.Notifications != nil {
		if err := h.profiles.UpdateNotifications(ctx, userID, *req.Notifications); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Followers != nil || req.Following != nil {
		profile, err := h.profiles.GetByUserID(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		followers := []string(profile.Followers)
		following := []string(profile.Following)
		if req.Followers != nil {
			followers = *req.Followers
		}
		if req.Following != nil {
			following = *req.Following
		}
		if err := h.profiles.UpdateFollowGraph(ctx, userID, followers, following); err != nil {
			respondError(c, err)
			return
		}
	}

	profile, err := h.profiles.GetByUserID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.pub.Publish(ctx, feed.ChannelProfiles, feed.EventTypeProfileUpdated, userID, profile)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(profile))
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, driftline_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("not found", "NOT_FOUND"))
	case errors.Is(err, driftline_errors.ErrAlreadyExists), errors.Is(err, driftline_errors.ErrConflict):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse("conflict", "CONFLICT"))
	case errors.Is(err, driftline_errors.ErrForbidden):
		c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
	case errors.Is(err, driftline_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid input", "INVALID_REQUEST"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("internal error", "INTERNAL"))
	}
}
