package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staymarket/internal/app/commands"
	"staymarket/internal/app/dto"
	PropertyApp "staymarket/internal/app/handlers/properties"
)

type AdminHTTP interface {
	ApproveProperty(c *gin.Context)
}

type AdminHandler struct {
	Commands commands.Bus
}

func (h AdminHandler) ApproveProperty(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	cmd := PropertyApp.ApprovePropertyCommand{PropertyID: c.Param("id")}
	result, err := commands.Dispatch[PropertyApp.ApprovePropertyCommand, *dto.PropertySummary](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondPropertyError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
