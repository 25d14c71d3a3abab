package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/miaout11/forum-express-grading/internal/middleware"
	"github.com/miaout11/forum-express-grading/internal/services"
)

// render answers with a view directive: the view name, its data and any
// pending flash messages.
func render(c *fiber.Ctx, view string, data fiber.Map) error {
	out := fiber.Map{"view": view}
	for k, v := range data {
		out[k] = v
	}
	for k, v := range middleware.Flashes(c) {
		out[k] = v
	}
	return c.JSON(out)
}

// redirectBack returns to the referring page, or the restaurant list.
func redirectBack(c *fiber.Ctx) error {
	return c.RedirectBack("/restaurants")
}

// formUpload returns the optional file of a multipart field. The returned
// close func must be called once the upload is consumed. A body that is not
// multipart, or has no such field, yields no upload; a broken multipart body
// is a 400.
func formUpload(c *fiber.Ctx, field string) (*services.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, fiber.NewError(fiber.StatusBadRequest, "Invalid multipart form")
	}
	if fh == nil || fh.Size == 0 {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &services.Upload{Filename: fh.Filename, Content: f}, func() { f.Close() }, nil
}
