package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/bookstacksapp/bookstacks-server/internal/domain"
	apperrors "github.com/bookstacksapp/bookstacks-server/internal/errors"
	"github.com/bookstacksapp/bookstacks-server/internal/http/response"
	"github.com/bookstacksapp/bookstacks-server/internal/service"
)

// ProfileResponse is the body of profile reads and writes.
type ProfileResponse struct {
	User *domain.User `json:"user"`
}

// handleGetProfile returns the caller's own profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.GetProfile(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, ProfileResponse{User: user}, s.logger)
}

// handleUpdateProfile merges the supplied fields over the caller's profile.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var params service.UpdateProfileParams
	if err := json.UnmarshalRead(r.Body, &params); err != nil {
		response.HandleError(w, apperrors.InvalidRequest("invalid request body"), s.logger)
		return
	}

	user, err := s.userService.UpdateProfile(r.Context(), getUserID(r.Context()), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, ProfileResponse{User: user}, s.logger)
}
