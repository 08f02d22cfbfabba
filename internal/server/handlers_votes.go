package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
)

func (s *Server) handleGetAnswer(c echo.Context) error {
	answerID, err := pathID(c, "answerId")
	if err != nil {
		return err
	}

	answer, err := s.answers.GetAnswer(c.Request().Context(), answerID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, answer)
}

func (s *Server) handleUpvote(c echo.Context) error {
	return s.handleVote(c, domain.VoteUp)
}

func (s *Server) handleDownvote(c echo.Context) error {
	return s.handleVote(c, domain.VoteDown)
}

func (s *Server) handleVote(c echo.Context, direction domain.VoteDirection) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	answerID, err := pathID(c, "answerId")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var result *domain.VoteResult
	if direction == domain.VoteUp {
		result, err = s.ledger.Upvote(ctx, userID, answerID)
	} else {
		result, err = s.ledger.Downvote(ctx, userID, answerID)
	}
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": result.Message(),
		"answer":  result.Answer,
	})
}

func (s *Server) handleAccept(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	answerID, err := pathID(c, "answerId")
	if err != nil {
		return err
	}

	answer, err := s.acceptance.Accept(c.Request().Context(), userID, answerID)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Answer accepted",
		"answer":  answer,
	})
}

func (s *Server) handleUnaccept(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	answerID, err := pathID(c, "answerId")
	if err != nil {
		return err
	}

	answer, err := s.acceptance.Unaccept(c.Request().Context(), userID, answerID)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Answer acceptance removed",
		"answer":  answer,
	})
}
