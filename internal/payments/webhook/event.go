package webhook

import (
	"strings"

	"github.com/felixgeelhaar/gatherly/internal/shared/apperr"
	"github.com/tidwall/gjson"
)

// Shape names the wire layout an event arrived in.
type Shape string

const (
	// ShapeEntity nests objects under payload.<name>.entity.
	ShapeEntity Shape = "entity"
	// ShapeLegacy carries flat top-level fields.
	ShapeLegacy Shape = "legacy"
)

var (
	ErrMalformedBody = apperr.Validation("webhook body is not valid JSON")
	ErrUnknownShape  = apperr.Validation("webhook body has no payment link reference")
)

// Event is a webhook normalized from either shape.
type Event struct {
	Shape         Shape
	Type          string
	PaymentID     string
	PaymentLinkID string
	PaymentLink   string
	Status        string
}

var successStatuses = map[string]struct{}{
	"paid":       {},
	"captured":   {},
	"success":    {},
	"successful": {},
	"completed":  {},
}

// Succeeded reports whether the status denotes a completed payment.
func (e Event) Succeeded() bool {
	_, ok := successStatuses[strings.ToLower(strings.TrimSpace(e.Status))]
	return ok
}

// LinkSuffix returns the last path segment of the payment link URL.
func (e Event) LinkSuffix() string {
	return LinkSuffix(e.PaymentLink)
}

// LinkSuffix returns the last non-empty path segment of a link URL, without
// query or fragment.
func LinkSuffix(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	link = strings.TrimRight(link, "/")
	if i := strings.LastIndexByte(link, '/'); i >= 0 {
		return link[i+1:]
	}
	return ""
}

// Parse detects the shape of body and extracts the payment fields.
func Parse(body []byte) (Event, error) {
	if !gjson.ValidBytes(body) {
		return Event{}, ErrMalformedBody
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Event{}, ErrMalformedBody
	}

	if ev, ok := parseEntity(root); ok {
		return ev, nil
	}
	if ev, ok := parseLegacy(root); ok {
		return ev, nil
	}
	return Event{}, ErrUnknownShape
}

func parseEntity(root gjson.Result) (Event, bool) {
	link := root.Get("payload.payment_link.entity")
	payment := root.Get("payload.payment.entity")
	if !link.IsObject() && !payment.IsObject() {
		return Event{}, false
	}

	ev := Event{
		Shape:         ShapeEntity,
		Type:          root.Get("event").String(),
		PaymentID:     payment.Get("id").String(),
		PaymentLinkID: link.Get("id").String(),
		PaymentLink:   link.Get("short_url").String(),
		Status:        link.Get("status").String(),
	}
	if ev.PaymentLinkID == "" {
		ev.PaymentLinkID = payment.Get("payment_link_id").String()
	}
	if ev.Status == "" {
		ev.Status = payment.Get("status").String()
	}
	if ev.PaymentLinkID == "" && ev.PaymentLink == "" {
		return Event{}, false
	}
	return ev, true
}

func parseLegacy(root gjson.Result) (Event, bool) {
	ev := Event{
		Shape:         ShapeLegacy,
		Type:          root.Get("event").String(),
		PaymentID:     first(root, "payment_id", "razorpay_payment_id"),
		PaymentLinkID: first(root, "payment_link_id", "plink_id", "razorpay_payment_link_id"),
		PaymentLink:   first(root, "payment_link", "short_url"),
		Status:        first(root, "status", "payment_link_status", "razorpay_payment_link_status"),
	}
	if ev.PaymentLinkID == "" && ev.PaymentLink == "" {
		return Event{}, false
	}
	return ev, true
}

func first(root gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := root.Get(path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
