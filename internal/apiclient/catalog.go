package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
)

// ProgramFilter narrows the program list server side.
type ProgramFilter struct {
	Category   string
	Difficulty string
}

func (f ProgramFilter) values() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Difficulty != "" {
		q.Set("difficulty", f.Difficulty)
	}
	return q
}

func (c *Client) ListPrograms(ctx context.Context, f ProgramFilter) ([]domain.Program, error) {
	var out []domain.Program
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/programs", path: "/api/programs", query: f.values()}, &out)
	return out, err
}

func (c *Client) GetProgram(ctx context.Context, id string) (*domain.Program, error) {
	var out domain.Program
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/programs/{id}", path: "/api/programs/" + pathEscape(id)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProgram(ctx context.Context, in domain.ProgramInput) (*domain.Program, error) {
	var out domain.Program
	err := c.do(ctx, call{method: http.MethodPost, route: "/api/programs", path: "/api/programs", body: in}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProgram(ctx context.Context, id string, in domain.ProgramInput) (*domain.Program, error) {
	var out domain.Program
	err := c.do(ctx, call{method: http.MethodPut, route: "/api/programs/{id}", path: "/api/programs/" + pathEscape(id), body: in}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProgram(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, route: "/api/programs/{id}", path: "/api/programs/" + pathEscape(id)}, nil)
}

// ListTrainers returns every trainer; callers filter to active ones.
func (c *Client) ListTrainers(ctx context.Context) ([]domain.Trainer, error) {
	var out []domain.Trainer
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/trainers", path: "/api/trainers"}, &out)
	return out, err
}

func (c *Client) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	var out []domain.Product
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/products", path: "/api/products", query: q}, &out)
	return out, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/products/{id}", path: "/api/products/" + pathEscape(id)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	var out []domain.Testimonial
	err := c.do(ctx, call{method: http.MethodGet, route: "/api/testimonials", path: "/api/testimonials"}, &out)
	return out, err
}

func (c *Client) CreateTestimonial(ctx context.Context, t domain.Testimonial) (*domain.Testimonial, error) {
	var out domain.Testimonial
	err := c.do(ctx, call{method: http.MethodPost, route: "/api/testimonials", path: "/api/testimonials", body: t}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
