package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"printshop/internal/model"
)

// ListMyOrders returns the caller's orders.
func (c *Client) ListMyOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/orders/my-orders", auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAllOrders returns every order (admin token required).
func (c *Client) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/orders/all", auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrderStatus sets the status of one order.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	r, err := jsonRequest(http.MethodPut, "/api/orders/update/"+escape(id), true, model.StatusUpdate{Status: status})
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}

// CreateOrder creates an order referencing an uploaded file.
func (c *Client) CreateOrder(ctx context.Context, fileURL string) error {
	r, err := jsonRequest(http.MethodPost, "/api/orders/create", true, model.CreateOrderRequest{FileURL: fileURL})
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}

// UploadFile stores an artifact and returns its reference URL. It does not
// create an order.
func (c *Client) UploadFile(ctx context.Context, a model.Artifact) (string, error) {
	var out model.UploadResult
	if err := c.upload(ctx, "/api/orders/upload", a, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", &TransportError{Op: "POST /api/orders/upload", Err: fmt.Errorf("response has no url")}
	}
	return out.URL, nil
}

// UploadAndAnalyze uploads a document, creates its order and returns the
// AI analysis, all in one call.
func (c *Client) UploadAndAnalyze(ctx context.Context, a model.Artifact) (model.UploadResult, error) {
	var out model.UploadResult
	if err := c.upload(ctx, "/api/files/processPdfAndUpload", a, &out); err != nil {
		return model.UploadResult{}, err
	}
	return out, nil
}

func (c *Client) upload(ctx context.Context, path string, a model.Artifact, out interface{}) error {
	body, contentType, err := multipartBody(a)
	if err != nil {
		return err
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		auth:        true,
		body:        body,
		contentType: contentType,
	}, out)
}

// multipartBody buffers the artifact as a single "file" form part.
func multipartBody(a model.Artifact) (io.Reader, string, error) {
	src, err := a.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", a.Name, err)
	}
	defer src.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, a.Name))
	h.Set("Content-Type", a.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", a.Name, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
