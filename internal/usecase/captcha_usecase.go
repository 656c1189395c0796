package usecase

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	domainerrors "github.com/wekeepgrowing/semo-authn/internal/domain/errors"
	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/dto"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	captchaTextLen    = 6
	captchaImgWidth   = 200
	captchaImgHeight  = 80
	captchaNoiseCount = 1000
	captchaLineCount  = 4
)

// Excludes easily confused characters (O, 0, I, 1).
const captchaAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type CaptchaUseCase struct {
	cacheRepo repository.CacheRepository
	auditUC   *AuditLogUseCase
	enabled   bool
	logger    *zap.Logger
}

func NewCaptchaUseCase(
	cacheRepo repository.CacheRepository,
	auditUC *AuditLogUseCase,
	enabled bool,
	logger *zap.Logger,
) *CaptchaUseCase {
	return &CaptchaUseCase{
		cacheRepo: cacheRepo,
		auditUC:   auditUC,
		enabled:   enabled,
		logger:    logger,
	}
}

// Enabled reports whether the captcha gate is active for this deployment.
func (u *CaptchaUseCase) Enabled() bool {
	return u.enabled
}

// Required reports whether the given source must solve a captcha before its
// next login attempt. The gate engages once a source accumulates enough
// recent failures.
func (u *CaptchaUseCase) Required(ctx context.Context, email, ip string) (bool, error) {
	if !u.enabled {
		return false, nil
	}
	count, err := u.auditUC.CountRecentFailures(ctx, email, ip, constants.CaptchaFailureWindow)
	if err != nil {
		return false, err
	}
	return count >= constants.CaptchaFailureThreshold, nil
}

// Generate creates a new captcha challenge: a distorted text image whose
// answer is stored hashed with a bounded attempt budget.
func (u *CaptchaUseCase) Generate(ctx context.Context) (*dto.CaptchaChallenge, error) {
	text, err := captchaText(captchaTextLen)
	if err != nil {
		return nil, err
	}

	image, err := renderCaptchaImage(text)
	if err != nil {
		return nil, err
	}

	challengeID, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(constants.CaptchaChallengeTTL)
	value := encodeCaptchaState(hashToken(normalizeToken(text)), constants.CaptchaMaxAttempts, expiresAt)

	key := constants.CaptchaChallengePrefix + challengeID
	if err := u.cacheRepo.Set(ctx, key, value, constants.CaptchaChallengeTTL); err != nil {
		return nil, err
	}

	return &dto.CaptchaChallenge{
		ID:    challengeID,
		Image: "data:image/png;base64," + image,
	}, nil
}

// Verify checks an answer against the stored challenge. A correct answer
// consumes the challenge and returns a single-use pass token for the login
// endpoint; a wrong answer spends one attempt. The challenge is removed
// outright once its attempts are exhausted.
func (u *CaptchaUseCase) Verify(ctx context.Context, challengeID, answer string) (string, error) {
	key := constants.CaptchaChallengePrefix + challengeID

	// Claim the challenge atomically so concurrent verifications cannot
	// share attempts; re-store only when attempts remain.
	value, err := u.cacheRepo.GetDel(ctx, key)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", domainerrors.ErrInvalidCaptcha
	}

	answerHash, attemptsLeft, expiresAt, err := decodeCaptchaState(value)
	if err != nil {
		u.logger.Warn("malformed captcha state", zap.String("challenge_id", challengeID), zap.Error(err))
		return "", domainerrors.ErrInvalidCaptcha
	}
	if time.Now().After(expiresAt) {
		return "", domainerrors.ErrInvalidCaptcha
	}

	if hashToken(normalizeToken(answer)) != answerHash {
		attemptsLeft--
		if attemptsLeft > 0 {
			restored := encodeCaptchaState(answerHash, attemptsLeft, expiresAt)
			if err := u.cacheRepo.Set(ctx, key, restored, time.Until(expiresAt)); err != nil {
				u.logger.Warn("failed to restore captcha state", zap.Error(err))
			}
		}
		return "", domainerrors.ErrInvalidCaptcha
	}

	passToken, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	passKey := constants.CaptchaPassPrefix + passToken
	if err := u.cacheRepo.Set(ctx, passKey, "1", constants.CaptchaPassTTL); err != nil {
		return "", err
	}

	return passToken, nil
}

// ConsumePass redeems a pass token issued by Verify. Each token works once.
func (u *CaptchaUseCase) ConsumePass(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	value, err := u.cacheRepo.GetDel(ctx, constants.CaptchaPassPrefix+token)
	if err != nil {
		return false, err
	}
	return value != "", nil
}

func encodeCaptchaState(answerHash string, attemptsLeft int, expiresAt time.Time) string {
	return fmt.Sprintf("%s:%d:%d", answerHash, attemptsLeft, expiresAt.Unix())
}

func decodeCaptchaState(value string) (string, int, time.Time, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return "", 0, time.Time{}, fmt.Errorf("expected 3 fields, got %d", len(parts))
	}
	attempts, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, time.Time{}, err
	}
	expiresUnix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, time.Time{}, err
	}
	return parts[0], attempts, time.Unix(expiresUnix, 0), nil
}

// captchaText generates the random challenge text.
func captchaText(length int) (string, error) {
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(captchaAlphabet))))
		if err != nil {
			return "", err
		}
		result[i] = captchaAlphabet[n.Int64()]
	}
	return string(result), nil
}

// randomCoord returns a random value in [0, max). Only used for visual
// noise, so a degraded random source falls back to 0 instead of failing
// the challenge.
func randomCoord(max int) float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return float64(n.Int64())
}

// renderCaptchaImage draws the challenge text over a noisy background with
// strike-through lines and returns the PNG base64-encoded.
func renderCaptchaImage(text string) (string, error) {
	dc := gg.NewContext(captchaImgWidth, captchaImgHeight)

	dc.SetRGB(0.97, 0.97, 0.97)
	dc.Clear()

	for i := 0; i < captchaNoiseCount; i++ {
		x := randomCoord(captchaImgWidth)
		y := randomCoord(captchaImgHeight)
		dc.SetRGBA(randomCoord(100)/100.0, randomCoord(100)/100.0, randomCoord(100)/100.0, 0.3)
		dc.DrawPoint(x, y, 1)
		dc.Fill()
	}

	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return "", err
	}
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: 36}))

	// Each character gets its own color and slight rotation.
	for i, char := range text {
		r := 0.1 + 0.6*float64(i)/float64(len(text))
		g := 0.1 + 0.5*float64(len(text)-i)/float64(len(text))
		b := 0.2 + 0.5*math.Sin(float64(i))
		dc.SetRGB(r, g, b)

		angle := -0.2 + 0.4*float64(i)/float64(len(text))
		x := float64(captchaImgWidth)/8 + float64(i)*float64(captchaImgWidth)/8
		y := float64(captchaImgHeight)/2 + 10*math.Sin(float64(i))

		dc.RotateAbout(angle, x, y)
		dc.DrawStringAnchored(string(char), x, y, 0.5, 0.5)
		dc.RotateAbout(-angle, x, y)
	}

	for i := 0; i < captchaLineCount; i++ {
		dc.SetRGBA(0.5, 0.5, 0.5, 0.5)
		dc.SetLineWidth(1)
		dc.DrawLine(0, randomCoord(captchaImgHeight), captchaImgWidth, randomCoord(captchaImgHeight))
		dc.Stroke()
	}

	buf := new(bytes.Buffer)
	if err := dc.EncodePNG(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
