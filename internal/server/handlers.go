package server

import (
	"net/http"

	"dadjoke/internal/models"
	"dadjoke/pkg/logger"

	"github.com/labstack/echo/v4"
)

type jokeResponse struct {
	Joke string `json:"joke"`
}

// storedJokeResponse always carries id, null when the insert failed.
type storedJokeResponse struct {
	Joke string `json:"joke"`
	ID   *int64 `json:"id"`
}

func (s *Server) handleJoke(c echo.Context) error {
	res := s.svc.Joke(c.Request().Context())

	if s.svc.Persistent() {
		return c.JSON(http.StatusOK, storedJokeResponse{Joke: res.Text, ID: res.ID})
	}
	return c.JSON(http.StatusOK, jokeResponse{Joke: res.Text})
}

func (s *Server) handleRecent(c echo.Context) error {
	if !s.svc.Persistent() {
		return c.JSON(http.StatusOK, []models.Joke{})
	}

	jokes, err := s.svc.Recent(c.Request().Context())
	if err != nil {
		logger.Error("Failed to list recent jokes", logger.Err(err))
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, jokes)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
