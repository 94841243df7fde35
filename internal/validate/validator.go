// Package validate checks email deliverability in three stages: format,
// DNS MX records, and an SMTP RCPT probe against the preferred exchange.
package validate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/idna"

	"github.com/JakeFAU/lead-harvester/internal/lead"
	"github.com/JakeFAU/lead-harvester/internal/metrics"
)

// Method is recorded on every result produced by Validate.
const Method = "comprehensive"

const (
	defaultSMTPTimeout = 10 * time.Second
	defaultDNSTimeout  = 5 * time.Second
	defaultHeloDomain  = "test.com"
	smtpPort           = "25"

	formatScore = 0.2
	dnsScore    = 0.3
	smtpScore   = 0.8
	validAt     = 0.5

	formatSpam = 0.5
	dnsSpam    = 0.3
	smtpSpam   = 0.2
)

// Probe outcome messages.
const (
	MsgExists       = "Email address exists"
	MsgNotExists    = "Email address does not exist"
	MsgMailRejected = "MAIL FROM rejected"
	MsgHandshake    = "SMTP handshake failed"
	MsgNoMX         = "No MX records found"
)

var (
	formatPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	spamPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[0-9]{10,}`),
		regexp.MustCompile(`[a-zA-Z]{20,}`),
		regexp.MustCompile(`[._%+-]{3,}`),
		regexp.MustCompile(`@.*@`),
		regexp.MustCompile(`\.{2,}`),
	}
)

// MXResolver looks up mail exchangers. *net.Resolver satisfies it.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Dialer opens the SMTP connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Validator runs the format, DNS and SMTP checks.
type Validator struct {
	resolver    MXResolver
	dialer      Dialer
	smtpTimeout time.Duration
	dnsTimeout  time.Duration
	helo        string
	clock       lead.Clock
	logger      *zap.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithResolver replaces the DNS resolver.
func WithResolver(r MXResolver) Option {
	return func(v *Validator) {
		if r != nil {
			v.resolver = r
		}
	}
}

// WithDialer replaces the SMTP dialer.
func WithDialer(d Dialer) Option {
	return func(v *Validator) {
		if d != nil {
			v.dialer = d
		}
	}
}

// WithTimeout bounds the whole SMTP conversation.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.smtpTimeout = d
		}
	}
}

// WithDNSTimeout bounds each MX lookup.
func WithDNSTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.dnsTimeout = d
		}
	}
}

// WithHeloDomain sets the name sent in EHLO.
func WithHeloDomain(domain string) Option {
	return func(v *Validator) {
		if domain != "" {
			v.helo = domain
		}
	}
}

// WithClock sets the clock used for LastChecked.
func WithClock(c lead.Clock) Option {
	return func(v *Validator) {
		if c != nil {
			v.clock = c
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

type utcClock struct{}

func (utcClock) Now() time.Time { return time.Now().UTC() }

// New builds a Validator that uses the system resolver and dialer unless
// overridden.
func New(opts ...Option) *Validator {
	v := &Validator{
		resolver:    net.DefaultResolver,
		dialer:      &net.Dialer{},
		smtpTimeout: defaultSMTPTimeout,
		dnsTimeout:  defaultDNSTimeout,
		helo:        defaultHeloDomain,
		clock:       utcClock{},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Format checks the address syntax and rejects common spam shapes.
func (v *Validator) Format(email string) (bool, string) {
	if email == "" {
		return false, "Empty email"
	}
	if !formatPattern.MatchString(email) {
		return false, "Invalid email format"
	}
	for _, p := range spamPatterns {
		if p.MatchString(email) {
			return false, "Spam pattern detected: " + p.String()
		}
	}
	return true, "Valid email format"
}

// HasMX reports whether the domain publishes at least one MX record. Any
// lookup failure counts as no.
func (v *Validator) HasMX(ctx context.Context, domain string) bool {
	records, err := v.lookupMX(ctx, domain)
	if err != nil {
		v.logger.Debug("mx lookup failed", zap.String("domain", domain), zap.Error(err))
		return false
	}
	return len(records) > 0
}

func (v *Validator) lookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
		domain = ascii
	}
	ctx, cancel := context.WithTimeout(ctx, v.dnsTimeout)
	defer cancel()
	records, err := v.resolver.LookupMX(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("lookup mx %s: %w", domain, err)
	}
	return records, nil
}

// ProbeSMTP asks the preferred mail exchanger whether it accepts mail for
// email. A protocol-level rejection is reported through accepted and msg;
// err is set only when the exchanger could not be reached or the
// conversation broke off.
func (v *Validator) ProbeSMTP(ctx context.Context, email string) (accepted bool, msg string, err error) {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false, "", fmt.Errorf("probe %q: missing domain", email)
	}
	domain := email[at+1:]

	records, err := v.lookupMX(ctx, domain)
	if err != nil {
		return false, "", err
	}
	if len(records) == 0 {
		return false, MsgNoMX, nil
	}
	slices.SortStableFunc(records, func(a, b *net.MX) int { return int(a.Pref) - int(b.Pref) })
	host := strings.TrimSuffix(records[0].Host, ".")

	ctx, cancel := context.WithTimeout(ctx, v.smtpTimeout)
	defer cancel()
	conn, err := v.dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, smtpPort))
	if err != nil {
		return false, "", fmt.Errorf("dial %s: %w", host, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return classify(err, MsgHandshake)
	}
	defer func() { _ = client.Close() }()

	if err := client.Hello(v.helo); err != nil {
		return classify(err, MsgHandshake)
	}
	if err := client.Mail("test@" + domain); err != nil {
		return classify(err, MsgMailRejected)
	}
	if err := client.Rcpt(email); err != nil {
		return classify(err, MsgNotExists)
	}
	return true, MsgExists, nil
}

// classify turns an SMTP reply error into a rejection message and leaves
// transport errors as errors.
func classify(err error, rejected string) (bool, string, error) {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return false, rejected, nil
	}
	return false, "", fmt.Errorf("smtp: %w", err)
}

// Validate runs the full check and never fails: unreachable DNS or SMTP is
// recorded on the result.
func (v *Validator) Validate(ctx context.Context, email string) lead.EmailValidationResult {
	res := lead.EmailValidationResult{
		Email:       email,
		Method:      Method,
		LastChecked: v.clock.Now(),
	}
	defer func() { metrics.ObserveEmailValidation(res.Valid) }()

	ok, msg := v.Format(email)
	res.FormatValid = ok
	res.Notes = append(res.Notes, "Format: "+msg)
	if !ok {
		res.SpamScore += formatSpam
		return res
	}

	domain := email[strings.LastIndex(email, "@")+1:]
	res.DNSValid = v.HasMX(ctx, domain)
	res.DNSCheck = res.DNSValid
	res.MXRecordExists = res.DNSValid
	if res.DNSValid {
		res.Notes = append(res.Notes, "DNS MX: Valid")
	} else {
		res.Notes = append(res.Notes, "DNS MX: Invalid")
		res.SpamScore += dnsSpam
		return res
	}

	accepted, msg, err := v.ProbeSMTP(ctx, email)
	switch {
	case err != nil:
		res.Notes = append(res.Notes, "SMTP check skipped: "+err.Error())
		v.logger.Debug("smtp probe skipped", zap.String("email", email), zap.Error(err))
	case accepted:
		res.SMTPValid = true
		res.SMTPResponse = "SMTP: " + msg
		res.Notes = append(res.Notes, res.SMTPResponse)
		res.Score += smtpScore
	default:
		res.SMTPResponse = "SMTP: " + msg
		res.Notes = append(res.Notes, res.SMTPResponse)
		res.SpamScore += smtpSpam
	}

	res.Score += formatScore + dnsScore
	res.Valid = res.Score >= validAt
	return res
}
