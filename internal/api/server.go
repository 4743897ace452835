// Package api serves crawled output over HTTP: the course record, its
// summary, and the markdown projection.
package api

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/coursehound/coursehound/internal/export"
	"github.com/coursehound/coursehound/internal/render"
	"github.com/coursehound/coursehound/pkg/course"
	"github.com/coursehound/coursehound/pkg/logging"
)

// RecordFilename is the canonical record name inside an output dir.
const RecordFilename = "course.json"

// Server exposes one crawl output directory.
type Server struct {
	app       *fiber.App
	outputDir string
	logger    zerolog.Logger
}

func NewServer(outputDir string) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "coursehound",
			DisableStartupMessage: true,
		}),
		outputDir: outputDir,
		logger:    logging.GetLogger("api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.handleHealth)
	v1 := s.app.Group("/api/v1")
	v1.Get("/course", s.handleCourse)
	v1.Get("/summary", s.handleSummary)
	v1.Get("/markdown", s.handleMarkdown)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving on addr.
func (s *Server) Listen(addr string) error {
	s.logger.Info().Str("addr", addr).Str("output", s.outputDir).Msg("server listening")
	return s.app.Listen(addr)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	status := "ok"
	if _, err := os.Stat(filepath.Join(s.outputDir, RecordFilename)); err != nil {
		status = "no-record"
	}
	return c.JSON(fiber.Map{
		"status": status,
		"output": s.outputDir,
	})
}

func (s *Server) loadRecord(c *fiber.Ctx) (*course.Course, error) {
	record, err := export.ReadRecord(filepath.Join(s.outputDir, RecordFilename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no course record in output directory",
			})
		}
		s.logger.Error().Err(err).Msg("failed to load course record")
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "course record unreadable",
		})
	}
	return record, nil
}

func (s *Server) handleCourse(c *fiber.Ctx) error {
	record, err := s.loadRecord(c)
	if record == nil {
		return err
	}
	return c.JSON(record)
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	record, err := s.loadRecord(c)
	if record == nil {
		return err
	}
	return c.JSON(course.CollectStats(record))
}

func (s *Server) handleMarkdown(c *fiber.Ctx) error {
	record, err := s.loadRecord(c)
	if record == nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.SendString(render.RenderCourse(record))
}
