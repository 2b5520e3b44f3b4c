// Package whatsapp drives WhatsApp Web through a real browser to send
// messages, immediately or at a scheduled time. A persistent profile
// directory keeps the QR login across runs.
package whatsapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"

	apperrors "taskninja/internal/errors"
)

const (
	webURL = "https://web.whatsapp.com"

	// The message box in an open chat. WhatsApp Web keeps this attribute
	// stable across UI reshuffles.
	inputSelector = `div[contenteditable="true"][data-tab="10"]`
	// The element that only exists once the QR login completed.
	loggedInSelector = `div[aria-label], #pane-side`

	loginTimeout = 2 * time.Minute
	chatTimeout  = 45 * time.Second
)

// Sender sends WhatsApp messages through a browser session.
type Sender struct {
	profileDir string
	headless   bool
	now        func() time.Time
}

// NewSender creates a sender. profileDir persists the browser profile so the
// QR scan is only needed once. Headless only works after a first visible
// login.
func NewSender(profileDir string, headless bool) *Sender {
	return &Sender{profileDir: profileDir, headless: headless, now: time.Now}
}

func (s *Sender) newBrowserContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", s.headless),
		chromedp.UserDataDir(s.profileDir),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

// Send opens the chat for phone (digits only, country code included) and
// sends text. On a fresh profile it waits for the user to scan the QR code.
func (s *Sender) Send(ctx context.Context, phone, text string) error {
	if text == "" {
		return apperrors.InvalidInput("message text must not be empty")
	}
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return err
	}

	browserCtx, cancel := s.newBrowserContext(ctx)
	defer cancel()

	chatURL := fmt.Sprintf("%s/send?phone=%s&text=%s", webURL, normalized, url.QueryEscape(text))
	slog.Info("opening chat", slog.String("phone", normalized))

	loginCtx, cancelLogin := context.WithTimeout(browserCtx, loginTimeout)
	defer cancelLogin()
	if err := chromedp.Run(loginCtx,
		chromedp.Navigate(chatURL),
		chromedp.WaitVisible(loggedInSelector, chromedp.ByQuery),
	); err != nil {
		return apperrors.Wrap(apperrors.CodeNetwork, "login did not complete (scan the QR code within two minutes)", err)
	}

	chatCtx, cancelChat := context.WithTimeout(browserCtx, chatTimeout)
	defer cancelChat()
	if err := chromedp.Run(chatCtx,
		chromedp.WaitVisible(inputSelector, chromedp.ByQuery),
		chromedp.Click(inputSelector, chromedp.ByQuery),
		chromedp.KeyEvent("\r"),
		// Give the client a moment to hand the message to the server
		// before the browser goes away.
		chromedp.Sleep(3*time.Second),
	); err != nil {
		return apperrors.Wrap(apperrors.CodeNetwork, fmt.Sprintf("failed to send message to %s", normalized), err)
	}

	slog.Info("message sent", slog.String("phone", normalized))
	return nil
}

// SendAt blocks until the scheduled time, then sends. The wait is
// interruptible through ctx.
func (s *Sender) SendAt(ctx context.Context, phone, text string, at time.Time) error {
	wait := at.Sub(s.now())
	if wait < 0 {
		return apperrors.InvalidInput(fmt.Sprintf("scheduled time %s is in the past", at.Format(time.RFC3339)))
	}
	if wait > 0 {
		slog.Info("waiting to send",
			slog.String("phone", phone),
			slog.Time("at", at),
			slog.Duration("wait", wait.Truncate(time.Second)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return s.Send(ctx, phone, text)
}

// ParseSchedule accepts "15:04" (today, or tomorrow if already past) or a
// full "2006-01-02 15:04" timestamp in local time.
func ParseSchedule(value string, now time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04", value, now.Location()); err == nil {
		return t, nil
	}
	clock, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("schedule %q must be HH:MM or YYYY-MM-DD HH:MM", value))
	}
	at := time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
	if !at.After(now) {
		at = at.Add(24 * time.Hour)
	}
	return at, nil
}
