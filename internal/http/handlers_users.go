package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type memberResponse struct {
	UserID      string     `json:"userId"`
	TenantID    string     `json:"tenantId"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	InvitedBy   string     `json:"invitedBy,omitempty"`
	AddedAt     time.Time  `json:"addedAt"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
	SuspendedAt *time.Time `json:"suspendedAt,omitempty"`
}

func memberFromAssociation(a domain.UserTenantAssociation) memberResponse {
	return memberResponse{
		UserID:      a.UserID,
		TenantID:    a.TenantID,
		Role:        string(a.Role),
		Status:      string(a.Status),
		InvitedBy:   a.InvitedBy,
		AddedAt:     a.AddedAt,
		AcceptedAt:  a.AcceptedAt,
		SuspendedAt: a.SuspendedAt,
	}
}

func (s *Server) handleListMyTenants(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	memberships, err := s.membership.ListTenantsForUser(c.Request.Context(), identity)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	out := make([]memberResponse, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, memberFromAssociation(m))
	}
	c.JSON(http.StatusOK, gin.H{"tenants": out})
}

func (s *Server) handleAcceptInvite(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	assoc, err := s.membership.AcceptInvite(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, memberFromAssociation(assoc))
}

func (s *Server) handleListMembers(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	members, err := s.membership.ListMembers(c.Request.Context(), tc)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberFromAssociation(m))
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

type inviteRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

func (s *Server) handleInvite(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "email and role are required", nil)
		return
	}
	inv, err := s.membership.Invite(c.Request.Context(), tc, req.Email, domain.Role(req.Role))
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"invitationId": inv.ID,
		"tenantId":     inv.TenantID,
		"email":        inv.Email,
		"role":         string(inv.Role),
		"invitedAt":    inv.InvitedAt,
	})
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (s *Server) handleUpdateRole(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "role is required", nil)
		return
	}
	if err := s.membership.UpdateRole(c.Request.Context(), tc, c.Param("userID"), domain.Role(req.Role)); err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSuspend(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	if err := s.membership.Suspend(c.Request.Context(), tc, c.Param("userID")); err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleActivate(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	if err := s.membership.Activate(c.Request.Context(), tc, c.Param("userID")); err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRemove(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	if err := s.membership.Remove(c.Request.Context(), tc, c.Param("userID")); err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type transferOwnershipRequest struct {
	NewOwnerID string `json:"newOwnerId" binding:"required"`
}

func (s *Server) handleTransferOwnership(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	var req transferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "newOwnerId is required", nil)
		return
	}
	if err := s.membership.TransferOwnership(c.Request.Context(), tc, req.NewOwnerID); err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
