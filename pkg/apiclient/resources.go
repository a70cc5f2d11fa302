package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Resource names accepted by the CRUD passthrough helpers.
type Resource string

const (
	Users         Resource = "users"
	Patients      Resource = "patients"
	Appointments  Resource = "appointments"
	Beds          Resource = "beds"
	HealthRecords Resource = "health-records"
)

func (r Resource) path(id string) string {
	if id == "" {
		return "/" + string(r)
	}
	return fmt.Sprintf("/%s/%s", r, url.PathEscape(id))
}

// Create posts body to /{resource} and decodes the reply into out.
func (c *Client) Create(ctx context.Context, r Resource, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, r.path(""), body, out)
}

// Update puts body to /{resource}/{id} and decodes the reply into out.
func (c *Client) Update(ctx context.Context, r Resource, id string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, r.path(id), body, out)
}

func (c *Client) Delete(ctx context.Context, r Resource, id string) error {
	return c.do(ctx, http.MethodDelete, r.path(id), nil, nil)
}
