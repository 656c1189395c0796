package http

import (
	"net/http"

	"github.com/wekeepgrowing/semo-authn/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CaptchaVerifyRequest struct {
	ChallengeID string `json:"challenge_id" form:"challenge_id"`
	Answer      string `json:"answer" form:"answer"`
}

type CaptchaHandler struct {
	captchaUC *usecase.CaptchaUseCase
	logger    *zap.Logger
}

func NewCaptchaHandler(ucs *usecase.UseCases, logger *zap.Logger) *CaptchaHandler {
	return &CaptchaHandler{
		captchaUC: ucs.Captcha,
		logger:    logger,
	}
}

// Generate issues a new captcha challenge image.
// POST /captcha/generate
func (h *CaptchaHandler) Generate(c echo.Context) error {
	challenge, err := h.captchaUC.Generate(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to generate captcha")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"challenge_id": challenge.ID,
		"image":        challenge.Image,
	})
}

// Verify checks a captcha answer and, when correct, returns the single-use
// pass token the login endpoint accepts.
// POST /captcha/verify
func (h *CaptchaHandler) Verify(c echo.Context) error {
	req := new(CaptchaVerifyRequest)
	if err := c.Bind(req); err != nil || req.ChallengeID == "" || req.Answer == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "challenge_id and answer required"})
	}

	token, err := h.captchaUC.Verify(c.Request().Context(), req.ChallengeID, req.Answer)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to verify captcha")
	}

	return c.JSON(http.StatusOK, map[string]string{"captcha_token": token})
}
