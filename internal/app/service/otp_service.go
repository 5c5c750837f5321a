package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"

	"evoting_backend/internal/common"
	"evoting_backend/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const otpCodeLength = 6

var otpCodePattern = regexp.MustCompile(`^\d{6}$`)

// SMSSender delivers the one-time code. The real provider lives outside
// this repo; LogSender stands in for it during development.
type SMSSender interface {
	Send(ctx context.Context, mobile, code string) error
}

type LogSender struct {
	Logger *zap.Logger
}

func (s *LogSender) Send(ctx context.Context, mobile, code string) error {
	s.Logger.Info("otp code issued", zap.String("mobile", common.MaskMobile(mobile)), zap.String("code", code))
	return nil
}

// OTPSession is one in-flight phone verification. Sessions are keyed by
// id, so concurrent flows for different users (or repeated flows for
// the same user) never share state.
type OTPSession struct {
	Mobile     string `json:"mobile"`
	CodeDigest string `json:"code_digest"`
	Attempts   int    `json:"attempts"`
}

// SessionStore persists OTP sessions and the per-mobile resend cooldown.
type SessionStore interface {
	SaveSession(ctx context.Context, id string, session *OTPSession) error
	GetSession(ctx context.Context, id string) (*OTPSession, error)
	DeleteSession(ctx context.Context, id string) error
	// IncrementAttempts bumps the failed-attempt counter without
	// touching the session's TTL, and returns the new count.
	IncrementAttempts(ctx context.Context, id string) (int, error)
	// ClaimCooldown returns false if a cooldown is already active for
	// the mobile number.
	ClaimCooldown(ctx context.Context, mobile string) (bool, error)
}

type redisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func sessionKey(id string) string { return "otp:session:" + id }
func cooldownKey(m string) string { return "otp:cooldown:" + m }

func (s *redisSessionStore) SaveSession(ctx context.Context, id string, session *OTPSession) error {
	key := sessionKey(id)
	if err := s.rdb.HSet(ctx, key,
		"mobile", session.Mobile,
		"code_digest", session.CodeDigest,
		"attempts", session.Attempts,
	).Err(); err != nil {
		return fmt.Errorf("redisSessionStore.SaveSession: %w", err)
	}
	if err := s.rdb.Expire(ctx, key, config.AppConfig.OTPCodeTTL).Err(); err != nil {
		return fmt.Errorf("redisSessionStore.SaveSession expire: %w", err)
	}
	return nil
}

func (s *redisSessionStore) GetSession(ctx context.Context, id string) (*OTPSession, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisSessionStore.GetSession: %w", err)
	}
	if len(data) == 0 {
		return nil, common.ErrNotFound
	}
	session := &OTPSession{
		Mobile:     data["mobile"],
		CodeDigest: data["code_digest"],
	}
	fmt.Sscanf(data["attempts"], "%d", &session.Attempts)
	return session, nil
}

func (s *redisSessionStore) DeleteSession(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}

func (s *redisSessionStore) IncrementAttempts(ctx context.Context, id string) (int, error) {
	count, err := s.rdb.HIncrBy(ctx, sessionKey(id), "attempts", 1).Result()
	if err != nil {
		return 0, fmt.Errorf("redisSessionStore.IncrementAttempts: %w", err)
	}
	return int(count), nil
}

func (s *redisSessionStore) ClaimCooldown(ctx context.Context, mobile string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, cooldownKey(mobile), "1", config.AppConfig.OTPResendCooldown).Result()
	if err != nil {
		return false, fmt.Errorf("redisSessionStore.ClaimCooldown: %w", err)
	}
	return ok, nil
}

type OTPService struct {
	store  SessionStore
	sender SMSSender
	logger *zap.Logger
}

func NewOTPService(store SessionStore, sender SMSSender, logger *zap.Logger) *OTPService {
	return &OTPService{store: store, sender: sender, logger: logger}
}

type SendOTPResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SendOTP creates a verification session and delivers a fresh 6-digit
// code. Resend requests inside the cooldown window are rejected.
func (s *OTPService) SendOTP(ctx context.Context, mobile string) (*SendOTPResponse, error) {
	if !mobilePattern.MatchString(mobile) {
		return nil, fmt.Errorf("mobile number must be exactly 10 digits: %w", common.ErrValidation)
	}

	ok, err := s.store.ClaimCooldown(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("please wait before requesting another code: %w", common.ErrConflict)
	}

	code, err := generateOTPCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	sessionID := uuid.NewString()
	session := &OTPSession{
		Mobile:     mobile,
		CodeDigest: digestCode(code),
	}
	if err := s.store.SaveSession(ctx, sessionID, session); err != nil {
		return nil, err
	}

	if err := s.sender.Send(ctx, mobile, code); err != nil {
		return nil, fmt.Errorf("failed to send code: %w", err)
	}

	s.logger.Info("otp session created", zap.String("session_id", sessionID))
	return &SendOTPResponse{SessionID: sessionID, Message: "Verification code sent"}, nil
}

// VerifyOTP checks the submitted code against the session. The session
// is consumed on success and after too many failed attempts.
func (s *OTPService) VerifyOTP(ctx context.Context, sessionID, code string) error {
	if sessionID == "" || !otpCodePattern.MatchString(code) {
		return fmt.Errorf("session id and a 6-digit code are required: %w", common.ErrBadRequest)
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("verification session expired or not found: %w", common.ErrNotFound)
		}
		return err
	}

	if subtle.ConstantTimeCompare([]byte(session.CodeDigest), []byte(digestCode(code))) != 1 {
		// SaveSession refreshes the key TTL, so failures are counted
		// with a bare increment instead.
		attempts, err := s.store.IncrementAttempts(ctx, sessionID)
		if err != nil {
			return err
		}
		if attempts >= config.AppConfig.OTPMaxAttempts {
			if err := s.store.DeleteSession(ctx, sessionID); err != nil {
				s.logger.Warn("failed to delete exhausted otp session", zap.Error(err))
			}
			return fmt.Errorf("too many failed attempts, request a new code: %w", common.ErrUnauthorized)
		}
		return fmt.Errorf("invalid verification code: %w", common.ErrUnauthorized)
	}

	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		s.logger.Warn("failed to delete verified otp session", zap.Error(err))
	}
	return nil
}

func generateOTPCode() (string, error) {
	code := make([]byte, otpCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = '0' + byte(n.Int64())
	}
	return string(code), nil
}

func digestCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
