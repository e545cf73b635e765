package session

import (
	"time"

	paseto "aidanwoods.dev/go-paseto"

	"shopgate/cmd/identity"
)

// Claims is the identity envelope carried by a credential.
type Claims struct {
	UserID    string
	Email     string
	Role      identity.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
	Issuer    string
}

// CredentialManager issues and verifies signed session credentials.
type CredentialManager interface {
	Issue(user identity.User, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (Claims, error)
	PublicKeyHex() string
}

type pasetoV4PublicManager struct {
	issuer    string
	ttl       time.Duration
	clockSkew time.Duration

	secret paseto.V4AsymmetricSecretKey
	public paseto.V4AsymmetricPublicKey
}

// NewPasetoV4PublicManager builds a CredentialManager based on PASETO v4.public.
//
// It uses an Ed25519 asymmetric keypair and enforces issuer and expiration
// rules. Clock skew is applied during verification via ValidAt to tolerate
// minor clock differences.
func NewPasetoV4PublicManager(cfg Config) (CredentialManager, error) {
	secret, err := paseto.NewV4AsymmetricSecretKeyFromHex(cfg.PasetoV4SecretKeyHex)
	if err != nil {
		return nil, ErrConfig
	}

	return &pasetoV4PublicManager{
		issuer:    cfg.Issuer,
		ttl:       cfg.CredentialTTL,
		clockSkew: cfg.ClockSkew,
		secret:    secret,
		public:    secret.Public(),
	}, nil
}

func (m *pasetoV4PublicManager) PublicKeyHex() string {
	return m.public.ExportHex()
}

func (m *pasetoV4PublicManager) Issue(user identity.User, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.ttl)

	tok := paseto.NewToken()
	tok.SetIssuer(m.issuer)
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now) // Credentials are valid immediately.
	tok.SetExpiration(exp)
	tok.SetSubject(user.ID)

	// Minimal, explicit claims. Role is embedded for observability only;
	// authorization re-reads the stored role on every resolution.
	_ = tok.Set("eml", user.Email)
	_ = tok.Set("rol", string(user.Role))

	return tok.V4Sign(m.secret, nil), exp, nil
}

func (m *pasetoV4PublicManager) Verify(token string, now time.Time) (Claims, error) {
	// Clock-skew tolerance: validate slightly in the future to avoid failing
	// "nbf" when clocks differ. This also makes expiration checks slightly
	// stricter, which is desirable.
	validNow := now.Add(m.clockSkew)

	// Build a fresh parser per call to avoid accumulating rules across verifies.
	p := paseto.NewParser()
	p.AddRule(paseto.IssuedBy(m.issuer))
	p.AddRule(paseto.NotExpired())
	p.AddRule(paseto.ValidAt(validNow))

	parsed, err := p.ParseV4Public(m.public, token, nil)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	sub, err := parsed.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, ErrInvalidToken
	}
	eml, err := parsed.GetString("eml")
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	rolRaw, err := parsed.GetString("rol")
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	rol, ok := identity.ParseRole(rolRaw)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	iss, _ := parsed.GetIssuer()
	exp, _ := parsed.GetExpiration()
	iat, _ := parsed.GetIssuedAt()

	return Claims{
		UserID:    sub,
		Email:     eml,
		Role:      rol,
		IssuedAt:  iat,
		ExpiresAt: exp,
		Issuer:    iss,
	}, nil
}
