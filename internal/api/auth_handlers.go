package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/bookstacksapp/bookstacks-server/internal/domain"
	apperrors "github.com/bookstacksapp/bookstacks-server/internal/errors"
	"github.com/bookstacksapp/bookstacks-server/internal/http/response"
	"github.com/bookstacksapp/bookstacks-server/internal/service"
)

// SignUpResponse is the body returned by a successful signup.
type SignUpResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

// handleSignUp registers a new account with the identity provider.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var params service.SignUpParams
	if err := json.UnmarshalRead(r.Body, &params); err != nil {
		response.HandleError(w, apperrors.InvalidRequest("invalid request body"), s.logger)
		return
	}

	if err := s.validator.Validate(params); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	user, err := s.userService.SignUp(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, SignUpResponse{Success: true, User: user}, s.logger)
}
