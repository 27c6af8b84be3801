package rest

import (
	"github.com/truckersblacklist/blacklist_api/internal/identity"
	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/util/values"
)

// SessionResponseHelper mints the API's own access token around the
// provider-issued user id.
func (api *API) SessionResponseHelper(session *identity.Session) (model.LoginResponse, string, string, error) {
	tokenString, _, err := api.createToken(session.UserID)
	if err != nil {
		return model.LoginResponse{}, values.Error, "Failed to create token", err
	}

	return model.LoginResponse{
		UserID:      session.UserID,
		Email:       session.Email,
		PhoneNumber: session.PhoneNumber,
		Anonymous:   session.Anonymous,
		Token:       tokenString,
	}, values.Success, "Session created", nil
}
