package render

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ZaguanLabs/linguaswap"
)

const (
	// AnnouncerID is the id of the live region written by the Announcer.
	AnnouncerID = "linguaswap-announcer"
	// AnnouncementPath is the translation path of the announcement template.
	AnnouncementPath = "a11y.languageChanged"
	// DefaultAnnounceClear is how long an announcement stays in the region.
	DefaultAnnounceClear = time.Second

	defaultAnnouncement = "Language changed to {language}. {count} elements updated."
)

// Announcer tells assistive technology about completed language switches
// through a polite live region.
type Announcer struct {
	doc        *Document
	resolver   linguaswap.Resolver
	clearAfter time.Duration
	logger     *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
	last  string
}

// AnnouncerOption configures an Announcer.
type AnnouncerOption func(*Announcer)

// WithClearAfter sets how long an announcement stays visible.
func WithClearAfter(d time.Duration) AnnouncerOption {
	return func(a *Announcer) {
		a.clearAfter = d
	}
}

// WithAnnouncerLogger sets the announcer's logger.
func WithAnnouncerLogger(l *slog.Logger) AnnouncerOption {
	return func(a *Announcer) {
		a.logger = l
	}
}

// NewAnnouncer creates an Announcer writing into doc.
func NewAnnouncer(doc *Document, resolver linguaswap.Resolver, opts ...AnnouncerOption) *Announcer {
	a := &Announcer{
		doc:        doc,
		resolver:   resolver,
		clearAfter: DefaultAnnounceClear,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Message formats the announcement for lang.
func (a *Announcer) Message(lang string, count int) string {
	template := defaultAnnouncement
	if a.resolver != nil {
		v := a.resolver.Resolve(lang, AnnouncementPath)
		if v.Kind == linguaswap.KindText && v.Text != "" && v.Text != AnnouncementPath {
			template = v.Text
		}
	}
	return strings.NewReplacer(
		"{language}", linguaswap.LanguageName(lang),
		"{count}", strconv.Itoa(count),
	).Replace(template)
}

// Announce writes the switch announcement and schedules its removal.
func (a *Announcer) Announce(lang string, count int) string {
	msg := a.Message(lang, count)

	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.last = msg
	if a.timer != nil {
		a.timer.Stop()
	}
	if a.clearAfter > 0 {
		a.timer = time.AfterFunc(a.clearAfter, func() { a.clear(gen) })
	}
	a.mu.Unlock()

	a.doc.Write(func(doc *goquery.Document) {
		region := ensureLiveRegion(doc)
		region.SetText(msg)
	})
	a.logger.Debug("announced language change", "language", lang, "count", count)
	return msg
}

// Last returns the most recent announcement.
func (a *Announcer) Last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Stop cancels a pending clear.
func (a *Announcer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Announcer) clear(gen uint64) {
	a.mu.Lock()
	current := a.gen == gen
	a.mu.Unlock()
	if !current {
		return
	}

	a.doc.Write(func(doc *goquery.Document) {
		doc.Find("#" + AnnouncerID).SetText("")
	})
}

// ensureLiveRegion returns the announcer region, appending it to the body
// when it does not exist yet.
func ensureLiveRegion(doc *goquery.Document) *goquery.Selection {
	if region := doc.Find("#" + AnnouncerID); region.Length() > 0 {
		return region.First()
	}

	node := &html.Node{
		Type: html.ElementNode,
		Data: "div",
		Attr: []html.Attribute{
			{Key: "id", Val: AnnouncerID},
			{Key: "aria-live", Val: "polite"},
			{Key: "aria-atomic", Val: "true"},
			{Key: "role", Val: "status"},
			{Key: "class", Val: "visually-hidden"},
		},
	}
	parent := doc.Find("body").First()
	if parent.Length() == 0 {
		parent = doc.Find("html").First()
	}
	parent.AppendNodes(node)
	return doc.FindNodes(node)
}
