package client

import (
	"context"
	"net/http"

	"metering-backend/models"
)

type loginResponse struct {
	Token string `json:"token"`
	OrgID string `json:"org_id"`
}

// Login exchanges credentials for a bearer token, installs it on the client,
// and initializes the session org if it has none yet.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/login", nil, body)
	if err != nil {
		return c.recordErr(err)
	}
	var out loginResponse
	if err := c.do(req, &out); err != nil {
		return c.recordErr(err)
	}

	c.SetToken(out.Token)
	if c.session != nil && c.session.CurrentOrgID == "" && out.OrgID != "" {
		if err := c.session.SwitchOrg(out.OrgID); err != nil {
			return c.recordErr(err)
		}
	}
	c.recordErr(nil)
	return nil
}

type orgListResponse struct {
	Organizations []models.Organization `json:"organizations"`
}

// ListOrganizations fetches the organizations available to the user, for org
// switching.
func (c *Client) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/organizations", nil, nil)
	if err != nil {
		return nil, c.recordErr(err)
	}
	var out orgListResponse
	if err := c.do(req, &out); err != nil {
		return nil, c.recordErr(err)
	}
	c.recordErr(nil)
	return out.Organizations, nil
}
