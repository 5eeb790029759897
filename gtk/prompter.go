package purfectscrollgtk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
	"github.com/phroun/purfectscroll"
	"github.com/phroun/purfectscroll/inhibit"
	"pkt.systems/pslog"
)

const (
	minFontSize = 8
	maxFontSize = 144

	// reflowSettle ends a reflow when GTK reports no new layout
	reflowSettle = 250 * time.Millisecond
)

// Options holds configuration for creating a prompter widget
type Options struct {
	Text        string
	FontFamily  string // Default "Sans"
	FontSize    int    // Points, default 32
	LineSpacing int    // Extra pixels below each line
	Margin      int    // Left and right text margin in pixels, default 48
	SpeedStep   float64
	AutoStart   bool

	Config purfectscroll.Config
	Theme  purfectscroll.Theme

	// Window receives key, map, and iconify events. Required.
	Window *gtk.Window
	// Application inhibits idling through the session. When nil, or when
	// the session refuses, the external inhibitors are tried.
	Application *gtk.Application
	// WakeLock overrides the default wake lock chain
	WakeLock purfectscroll.WakeLocker

	Logger pslog.Logger
}

func (o Options) withDefaults() Options {
	if o.FontFamily == "" {
		o.FontFamily = "Sans"
	}
	if o.FontSize <= 0 {
		o.FontSize = 32
	}
	if o.Margin <= 0 {
		o.Margin = 48
	}
	if o.SpeedStep <= 0 {
		o.SpeedStep = 10
	}
	if o.Theme == (purfectscroll.Theme{}) {
		o.Theme = purfectscroll.DarkTheme()
	}
	if o.Logger == nil {
		o.Logger = pslog.Ctx(context.Background())
	}
	return o
}

// Prompter is a GTK teleprompter widget: a read-only text view inside a
// scrolled window, with a notice bar underneath
type Prompter struct {
	opts Options
	log  pslog.Logger
	loop Loop

	box      *gtk.Box
	scroller *gtk.ScrolledWindow
	view     *gtk.TextView
	buffer   *gtk.TextBuffer
	css      *gtk.CssProvider

	noticeBox    *gtk.Box
	noticeLabel  *gtk.Label
	noticeButton *gtk.Button
	notices      map[purfectscroll.NoticeKind]purfectscroll.Notice
	message      string

	container *AdjustmentContainer
	ctrl      *purfectscroll.Controller
	vis       *purfectscroll.Visibility

	fontSize      int
	mapped        bool
	iconified     bool
	width, height int

	reflowPending bool
	reflowCancel  func()
}

// New creates a prompter widget. Pack Widget() into the window.
func New(opts Options) (*Prompter, error) {
	if opts.Window == nil {
		return nil, errors.New("purfectscrollgtk: window is required")
	}
	opts = opts.withDefaults()
	p := &Prompter{
		opts:     opts,
		log:      opts.Logger.With("component", "gtk"),
		notices:  make(map[purfectscroll.NoticeKind]purfectscroll.Notice),
		fontSize: opts.FontSize,
		vis:      purfectscroll.NewVisibility(),
	}
	if err := p.build(); err != nil {
		return nil, err
	}

	locker := opts.WakeLock
	if locker == nil {
		locker = purfectscroll.NewTieredWakeLocker(opts.Logger,
			&ApplicationInhibitor{App: opts.Application, Window: opts.Window},
			inhibit.Auto(opts.Logger))
	}

	p.container = NewAdjustmentContainer(p.scroller.GetVAdjustment(), func() {
		if p.ctrl != nil {
			p.ctrl.HandleScrollEvent()
		}
	})
	ctrl, err := purfectscroll.New(p.container, purfectscroll.Platform{
		Frames:     purfectscroll.NewTimerFrames(p.loop, opts.Config.PollInterval),
		Loop:       p.loop,
		WakeLock:   locker,
		Visibility: p.vis,
		Notifier:   p,
		Logger:     opts.Logger,
	}, opts.Config)
	if err != nil {
		return nil, err
	}
	p.ctrl = ctrl
	ctrl.OnScrollComplete(func() {
		p.showMessage("End of script. Press space to play again.")
	})

	p.connectWindow(opts.Window)
	if opts.AutoStart {
		p.loop.Post(func() { p.start() })
	}
	return p, nil
}

func (p *Prompter) build() error {
	var err error
	if p.box, err = gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 0); err != nil {
		return fmt.Errorf("create box: %w", err)
	}
	if p.scroller, err = gtk.ScrolledWindowNew(nil, nil); err != nil {
		return fmt.Errorf("create scrolled window: %w", err)
	}
	p.scroller.SetPolicy(gtk.POLICY_NEVER, gtk.POLICY_AUTOMATIC)

	if p.view, err = gtk.TextViewNew(); err != nil {
		return fmt.Errorf("create text view: %w", err)
	}
	p.view.SetName("purfectscroll-text")
	p.view.SetEditable(false)
	p.view.SetCursorVisible(false)
	p.view.SetWrapMode(gtk.WRAP_WORD_CHAR)
	p.view.SetLeftMargin(p.opts.Margin)
	p.view.SetRightMargin(p.opts.Margin)
	p.view.SetPixelsBelowLines(p.opts.LineSpacing)
	if p.buffer, err = p.view.GetBuffer(); err != nil {
		return fmt.Errorf("get text buffer: %w", err)
	}
	p.buffer.SetText(p.opts.Text)

	if p.css, err = gtk.CssProviderNew(); err != nil {
		return fmt.Errorf("create css provider: %w", err)
	}
	if err := p.css.LoadFromData(p.styleSheet()); err != nil {
		return fmt.Errorf("load css: %w", err)
	}
	styleCtx, err := p.view.GetStyleContext()
	if err != nil {
		return fmt.Errorf("get style context: %w", err)
	}
	styleCtx.AddProvider(p.css, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)

	// Layout changes arrive asynchronously as the text view revalidates
	p.scroller.GetVAdjustment().Connect("changed", func() {
		if p.reflowPending {
			p.endReflow()
		}
	})

	p.scroller.Add(p.view)
	p.box.PackStart(p.scroller, true, true, 0)

	if p.noticeBox, err = gtk.BoxNew(gtk.ORIENTATION_HORIZONTAL, 8); err != nil {
		return fmt.Errorf("create notice bar: %w", err)
	}
	if p.noticeLabel, err = gtk.LabelNew(""); err != nil {
		return fmt.Errorf("create notice label: %w", err)
	}
	p.noticeLabel.SetXAlign(0)
	if p.noticeButton, err = gtk.ButtonNewWithLabel(""); err != nil {
		return fmt.Errorf("create notice button: %w", err)
	}
	p.noticeButton.Connect("clicked", p.onNoticeAction)
	p.noticeBox.PackStart(p.noticeLabel, true, true, 8)
	p.noticeBox.PackEnd(p.noticeButton, false, false, 8)
	p.noticeBox.SetNoShowAll(true)
	p.box.PackEnd(p.noticeBox, false, false, 4)
	return nil
}

func (p *Prompter) styleSheet() string {
	t := p.opts.Theme
	return fmt.Sprintf(`#purfectscroll-text, #purfectscroll-text text {
	font-family: "%s";
	font-size: %dpt;
	color: %s;
	background-color: %s;
}`, p.opts.FontFamily, p.fontSize, t.Foreground.ToHex(), t.Background.ToHex())
}

func (p *Prompter) connectWindow(win *gtk.Window) {
	win.Connect("key-press-event", func(_ *gtk.Window, ev *gdk.Event) bool {
		key := gdk.EventKeyNewFromEvent(ev)
		return p.HandleKey(key.KeyVal())
	})
	win.Connect("map", func() {
		p.mapped = true
		p.updateVisibility()
	})
	win.Connect("unmap", func() {
		p.mapped = false
		p.updateVisibility()
	})
	win.Connect("window-state-event", func(_ *gtk.Window, ev *gdk.Event) bool {
		state := gdk.EventWindowStateNewFromEvent(ev)
		p.iconified = state.NewWindowState()&gdk.WINDOW_STATE_ICONIFIED != 0
		p.updateVisibility()
		return false
	})
	win.Connect("configure-event", func(_ *gtk.Window, ev *gdk.Event) bool {
		cfg := gdk.EventConfigureNewFromEvent(ev)
		if cfg.Width() != p.width || cfg.Height() != p.height {
			p.width, p.height = cfg.Width(), cfg.Height()
			p.beginReflow()
		}
		return false
	})
	win.Connect("destroy", p.Close)
}

func (p *Prompter) updateVisibility() {
	p.vis.SetHidden(!p.mapped || p.iconified)
}

// Widget returns the top-level container to pack into a window
func (p *Prompter) Widget() *gtk.Box {
	return p.box
}

// Controller returns the scroll controller
func (p *Prompter) Controller() *purfectscroll.Controller {
	return p.ctrl
}

// SetText replaces the script, keeping the reading position proportionally
func (p *Prompter) SetText(text string) {
	p.opts.Text = text
	p.beginReflow()
	p.buffer.SetText(text)
}

// SetFontSize changes the text size in points
func (p *Prompter) SetFontSize(size int) {
	if size < minFontSize {
		size = minFontSize
	}
	if size > maxFontSize {
		size = maxFontSize
	}
	if size == p.fontSize {
		return
	}
	p.fontSize = size
	p.beginReflow()
	if err := p.css.LoadFromData(p.styleSheet()); err != nil {
		p.log.Warn("font size change failed", "size", size, "error", err)
	}
}

// FontSize returns the current text size in points
func (p *Prompter) FontSize() int {
	return p.fontSize
}

func (p *Prompter) beginReflow() {
	if p.reflowCancel != nil {
		p.reflowCancel()
	}
	if !p.reflowPending {
		p.reflowPending = true
		p.ctrl.BeginReflow()
	}
	p.reflowCancel = p.loop.AfterFunc(reflowSettle, func() {
		p.reflowCancel = nil
		if p.reflowPending {
			p.endReflow()
		}
	})
}

func (p *Prompter) endReflow() {
	p.reflowPending = false
	if p.reflowCancel != nil {
		p.reflowCancel()
		p.reflowCancel = nil
	}
	p.ctrl.EndReflow()
}

// HandleKey applies a key press and reports whether it was consumed
func (p *Prompter) HandleKey(keyval uint) bool {
	switch keyval {
	case gdk.KEY_space:
		p.toggle()
	case gdk.KEY_plus, gdk.KEY_equal, gdk.KEY_KP_Add:
		p.ctrl.SetSpeed(p.ctrl.Speed() + p.opts.SpeedStep)
	case gdk.KEY_minus, gdk.KEY_underscore, gdk.KEY_KP_Subtract:
		p.ctrl.SetSpeed(p.ctrl.Speed() - p.opts.SpeedStep)
	case gdk.KEY_bracketleft:
		p.SetFontSize(p.fontSize - 2)
	case gdk.KEY_bracketright:
		p.SetFontSize(p.fontSize + 2)
	case gdk.KEY_r:
		if err := p.ctrl.RetryWakeLock(); err != nil {
			p.log.Debug("wake lock retry refused", "error", err)
		}
	case gdk.KEY_Escape, gdk.KEY_s:
		p.ctrl.StopScrolling()
	default:
		return false
	}
	return true
}

func (p *Prompter) toggle() {
	var err error
	switch p.ctrl.Status() {
	case purfectscroll.StatusScrolling:
		p.ctrl.Pause()
	case purfectscroll.StatusDecelerating, purfectscroll.StatusPaused:
		err = p.ctrl.Resume()
	default:
		err = p.start()
	}
	if err != nil {
		p.log.Debug("toggle refused", "error", err)
	}
}

func (p *Prompter) start() error {
	p.showMessage("")
	err := p.ctrl.StartScrolling()
	switch {
	case err == nil:
	case errors.Is(err, purfectscroll.ErrContentFits):
		p.showMessage("The whole script fits in the window.")
	case errors.Is(err, purfectscroll.ErrWakeLockUnsupported):
		p.showMessage("Press space again to scroll without a wake lock.")
	case errors.Is(err, purfectscroll.ErrWakeLockAcquisitionFailed):
		p.showMessage("Press space again to continue without a wake lock.")
	}
	return err
}

// Close stops scrolling and releases the wake lock
func (p *Prompter) Close() {
	if p.reflowCancel != nil {
		p.reflowCancel()
		p.reflowCancel = nil
	}
	p.ctrl.Close()
}
