package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/dto"
	ChatApp "staymarket/internal/app/handlers/chat"
	"staymarket/internal/app/queries"
	domainmessaging "staymarket/internal/domain/messaging"
	domainproperty "staymarket/internal/domain/property"
)

type ChatHTTP interface {
	StartConversation(c *gin.Context)
	ListConversations(c *gin.Context)
	ListMessages(c *gin.Context)
	SendMessage(c *gin.Context)
}

type ChatHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type startConversationRequest struct {
	PropertyID string `json:"property_id"`
}

func (h ChatHandler) StartConversation(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := ChatApp.StartConversationCommand{
		GuestID:    user.ID,
		PropertyID: req.PropertyID,
	}
	result, err := commands.Dispatch[ChatApp.StartConversationCommand, *dto.ConversationDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListConversations serves both sides of a thread: guests see the threads they
// opened, hosts see the threads on their listings (?as=host).
func (h ChatHandler) ListConversations(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var q ChatApp.ListConversationsQuery
	if sideParam(c) == "host" {
		if _, ok := requireRole(c, "host"); !ok {
			return
		}
		q.HostID = user.ID
	} else {
		q.GuestID = user.ID
	}
	result, err := queries.Ask[ChatApp.ListConversationsQuery, dto.ConversationCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ChatHandler) ListMessages(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	side := sideParam(c)
	if side == "host" {
		if _, ok := requireRole(c, "host"); !ok {
			return
		}
	}
	q := ChatApp.ListMessagesQuery{
		ConversationID: c.Param("id"),
		ReaderID:       user.ID,
		Reader:         side,
		MarkRead:       c.Query("mark_read") != "false",
	}
	result, err := queries.Ask[ChatApp.ListMessagesQuery, dto.MessageCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SendMessage accepts multipart form data so attachments ride along with the
// text body; plain JSON bodies are accepted for text-only messages.
func (h ChatHandler) SendMessage(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	side := sideParam(c)
	if side == "host" {
		if _, ok := requireRole(c, "host"); !ok {
			return
		}
	}

	cmd := ChatApp.SendMessageCommand{
		ConversationID: c.Param("id"),
		SenderID:       user.ID,
		Sender:         side,
	}

	contentType := c.ContentType()
	if contentType == "multipart/form-data" {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if values := form.Value["body"]; len(values) > 0 {
			cmd.Body = values[0]
		}
		for _, header := range form.File["attachments"] {
			file, err := header.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			defer file.Close()
			cmd.Uploads = append(cmd.Uploads, ChatApp.AttachmentUpload{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Content:     file,
			})
		}
	} else {
		var req struct {
			Body string `json:"body"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cmd.Body = req.Body
	}

	result, err := commands.Dispatch[ChatApp.SendMessageCommand, *dto.MessageDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func sideParam(c *gin.Context) string {
	if c.Query("as") == "host" {
		return "host"
	}
	return "guest"
}

func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainmessaging.ErrConversationNotFound),
		errors.Is(err, domainproperty.ErrPropertyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainmessaging.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainmessaging.ErrBodyRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		respondUnmapped(c, err)
	}
}

var _ ChatHTTP = ChatHandler{}
