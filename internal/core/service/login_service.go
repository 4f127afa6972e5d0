package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
)

const (
	msgUnknownEmail    = "Invalid email or password"
	msgWrongPassword   = "Incorrect password"
	msgAccountLocked   = "Account temporarily locked. Please try again later."
	msgPendingReview   = "Your membership is currently being processed."
	msgCancelled       = "Your membership has been cancelled. Please contact support."
	msgNotActive       = "Your account is not active."
	msgLoginSuccessful = "%s login successful"

	defaultConflictRetries = 3
)

// PasswordMatcher is the part of CredentialVerifier the login path needs.
type PasswordMatcher interface {
	Matches(raw, storedHash string) bool
}

// LoginDeps groups the collaborators of LoginService.
type LoginDeps struct {
	Identities ports.IdentityRepository
	Passwords  PasswordMatcher
	Tokens     ports.TokenIssuer
	Lockout    *LockoutPolicy
	Locker     ports.IdentityLocker
	Auditor    ports.LoginAuditor
	Log        zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// ConflictRetries bounds re-runs after a concurrent lockout write.
	ConflictRetries uint64
}

// LoginService runs the login state machine:
// lookup, lock check, password check, status check, success.
type LoginService struct {
	identities ports.IdentityRepository
	passwords  PasswordMatcher
	tokens     ports.TokenIssuer
	lockout    *LockoutPolicy
	locker     ports.IdentityLocker
	auditor    ports.LoginAuditor
	log        zerolog.Logger
	now        func() time.Time
	retries    uint64
}

func NewLoginService(deps LoginDeps) *LoginService {
	s := &LoginService{
		identities: deps.Identities,
		passwords:  deps.Passwords,
		tokens:     deps.Tokens,
		lockout:    deps.Lockout,
		locker:     deps.Locker,
		auditor:    deps.Auditor,
		log:        deps.Log,
		now:        deps.Now,
		retries:    deps.ConflictRetries,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.locker == nil {
		s.locker = NewLocalLocker()
	}
	if s.auditor == nil {
		s.auditor = nopAuditor{}
	}
	if s.retries == 0 {
		s.retries = defaultConflictRetries
	}
	return s
}

// Login decides one attempt. Attempts for the same email are serialized; a
// lost compare-and-set re-runs the whole attempt against fresh state.
func (s *LoginService) Login(ctx context.Context, email, password string) (ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)

	release, err := s.locker.Lock(ctx, email)
	switch {
	case err == nil:
		defer release()
	case ctx.Err() != nil:
		return ports.LoginResult{}, fmt.Errorf("login: %w", ctx.Err())
	default:
		s.log.Warn().Err(err).Str("email", email).Msg("identity lock unavailable, relying on versioned writes")
	}

	var (
		result ports.LoginResult
		event  domain.LoginEvent
	)
	op := func() error {
		r, ev, err := s.attempt(ctx, email, password)
		if err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				s.log.Debug().Str("email", email).Msg("lockout write conflict, retrying attempt")
				return err
			}
			return backoff.Permanent(err)
		}
		result, event = r, ev
		return nil
	}

	policy := backoff.NewExponentialBackOff(backoff.WithInitialInterval(10 * time.Millisecond))
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, s.retries), ctx)); err != nil {
		return ports.LoginResult{}, fmt.Errorf("login: %w", err)
	}

	s.auditor.Record(event)
	return result, nil
}

func (s *LoginService) attempt(ctx context.Context, email, password string) (ports.LoginResult, domain.LoginEvent, error) {
	now := s.now()
	event := domain.LoginEvent{Email: email, At: now}

	// 1. Lookup: admin space first, then member space.
	identity, err := s.lookup(ctx, email)
	if errors.Is(err, domain.ErrIdentityNotFound) {
		event.Outcome = domain.OutcomeInvalidCredentials
		return rejected(http.StatusUnauthorized, msgUnknownEmail, domain.ErrInvalidCredentials), event, nil
	}
	if err != nil {
		return ports.LoginResult{}, event, err
	}

	acct := identity.Base()
	event.Role = identity.Role()

	// 2. Lock check: no password comparison, no counter change.
	if s.lockout.IsLocked(acct.Lockout, now) {
		s.log.Warn().Str("email", email).Time("lock_until", *acct.Lockout.LockUntil).Msg("login rejected, account locked")
		event.Outcome = domain.OutcomeAccountLocked
		return rejected(http.StatusLocked, msgAccountLocked, domain.ErrAccountLocked), event, nil
	}

	// 3. Password check.
	if !s.passwords.Matches(password, acct.PasswordHash) {
		next := s.lockout.RecordFailure(acct.Lockout, now)
		if err := s.commit(ctx, identity, next); err != nil {
			return ports.LoginResult{}, event, err
		}
		event.Outcome = domain.OutcomeInvalidCredentials
		if next.LockUntil != nil {
			event.Locked = true
			s.log.Warn().Str("email", email).Int("failed_attempts", next.FailedLoginAttempts).Msg("account locked")
		}
		return rejected(http.StatusUnauthorized, msgWrongPassword, domain.ErrInvalidCredentials), event, nil
	}

	// 4. Status check, members only. Lockout fields stay as they are.
	if member, ok := identity.(*domain.Member); ok && member.Status != domain.StatusValidated {
		event.Outcome = domain.OutcomeAccountNotActive
		return rejected(http.StatusForbidden, inactiveMessage(member.Status), &domain.AccountNotActiveError{Status: member.Status}), event, nil
	}

	// 5. Success.
	if err := s.commit(ctx, identity, s.lockout.RecordSuccess(acct.Lockout)); err != nil {
		return ports.LoginResult{}, event, err
	}

	token, err := s.tokens.Issue(acct.Email, identity.Role(), now)
	if err != nil {
		return ports.LoginResult{}, event, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info().Str("email", email).Str("role", string(identity.Role())).Msg("login succeeded")
	event.Outcome = domain.OutcomeSucceeded
	return ports.LoginResult{
		Status:  http.StatusOK,
		Message: fmt.Sprintf(msgLoginSuccessful, identity.Role()),
		Token:   token,
		Role:    identity.Role(),
	}, event, nil
}

func (s *LoginService) lookup(ctx context.Context, email string) (domain.Identity, error) {
	admin, err := s.identities.FindAdminByEmail(ctx, email)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, domain.ErrIdentityNotFound) {
		return nil, fmt.Errorf("find admin: %w", err)
	}

	member, err := s.identities.FindMemberByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return member, nil
}

// commit is the only point where an attempt becomes visible. A request that
// is already cancelled never writes.
func (s *LoginService) commit(ctx context.Context, identity domain.Identity, next domain.Lockout) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.identities.SaveLockout(ctx, identity, next); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		return fmt.Errorf("save lockout: %w", err)
	}
	return nil
}

func rejected(status int, msg string, reason error) ports.LoginResult {
	return ports.LoginResult{Status: status, Message: msg, Reason: reason}
}

func inactiveMessage(status domain.MemberStatus) string {
	switch status {
	case domain.StatusPendingReview:
		return msgPendingReview
	case domain.StatusCancelled:
		return msgCancelled
	default:
		return msgNotActive
	}
}

type nopAuditor struct{}

func (nopAuditor) Record(domain.LoginEvent) {}
