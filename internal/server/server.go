// Package server exposes the conversion pipeline over HTTP for clients
// that want to upload a PDF and download the finished MP3.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/dgnsrekt/narrate/internal/audio"
	"github.com/dgnsrekt/narrate/internal/pdf"
	"github.com/dgnsrekt/narrate/internal/pipeline"
)

// maxUploadBytes caps multipart memory per request.
const maxUploadBytes = 64 << 20

// FileConverter is the part of the pipeline the server needs. Narrowed to
// an interface so handler tests run with an in-memory fake.
type FileConverter interface {
	ConvertFile(ctx context.Context, pdfPath, outPath string) error
}

// Server serves PDF-to-MP3 conversions over HTTP.
type Server struct {
	converter FileConverter
	router    *gin.Engine
}

func New(converter FileConverter) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{converter: converter}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), cors())
	router.MaxMultipartMemory = maxUploadBytes
	router.POST("/convert", s.handleConvert)

	s.router = router
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run blocks serving HTTP on addr until the listener fails.
func (s *Server) Run(addr string) error {
	log.Info("listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// handleConvert accepts a multipart PDF upload, converts it, and responds
// with the MP3 as an attachment. All per-request files live in a request
// temp directory removed when the response is done.
func (s *Server) handleConvert(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	if header.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded file is empty"})
		return
	}

	name := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF files are supported"})
		return
	}

	reqDir, err := os.MkdirTemp("", "narrate-upload-")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "temp dir unavailable"})
		return
	}
	defer os.RemoveAll(reqDir)

	pdfPath := filepath.Join(reqDir, name)
	if err := c.SaveUploadedFile(header, pdfPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saving upload failed"})
		return
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	outPath := filepath.Join(reqDir, stem+".mp3")

	if err := s.converter.ConvertFile(c.Request.Context(), pdfPath, outPath); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, pdf.ErrExtraction):
			status = http.StatusBadRequest
		case errors.Is(err, audio.ErrEmptyInput), errors.Is(err, pipeline.ErrInvalidInput):
			status = http.StatusUnprocessableEntity
		}
		log.Error("conversion failed", "file", name, "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.FileAttachment(outPath, stem+".mp3")
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
