package purfectscrollqt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mappu/miqt/qt"
	"github.com/phroun/purfectscroll"
	"github.com/phroun/purfectscroll/inhibit"
	"pkt.systems/pslog"
)

// Qt font size scale factor to match GTK/Pango font rendering
const qtFontSizeScale = 1.333

const (
	minFontSize  = 8
	maxFontSize  = 144
	reflowSettle = 250 * time.Millisecond
)

// Options holds configuration for creating a prompter widget
type Options struct {
	Text       string
	FontFamily string // Default "Sans Serif"
	FontSize   int    // Points, default 32
	Margin     int    // Document margin in pixels, default 48
	SpeedStep  float64
	AutoStart  bool
	Config     purfectscroll.Config
	Theme      purfectscroll.Theme
	WakeLock   purfectscroll.WakeLocker // Default inhibit.Auto
	Logger     pslog.Logger
}

func (o Options) withDefaults() Options {
	if o.FontFamily == "" {
		o.FontFamily = "Sans Serif"
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

// Prompter is a Qt teleprompter widget: a read-only QTextEdit with a
// notice bar underneath
type Prompter struct {
	opts Options
	log  pslog.Logger
	loop Loop

	root   *qt.QWidget
	edit   *qt.QTextEdit
	bar    *qt.QWidget
	label  *qt.QLabel
	button *qt.QPushButton

	notices map[purfectscroll.NoticeKind]purfectscroll.Notice
	message string

	container *ScrollBarContainer
	ctrl      *purfectscroll.Controller
	vis       *purfectscroll.Visibility

	fontSize      int
	reflowPending bool
	reflowCancel  func()
}

// New creates a prompter widget. Place Widget() in a window.
func New(opts Options) (*Prompter, error) {
	opts = opts.withDefaults()
	p := &Prompter{
		opts:     opts,
		log:      opts.Logger.With("component", "qt"),
		notices:  make(map[purfectscroll.NoticeKind]purfectscroll.Notice),
		fontSize: opts.FontSize,
		vis:      purfectscroll.NewVisibility(),
	}
	p.build()

	locker := opts.WakeLock
	if locker == nil {
		locker = inhibit.Auto(opts.Logger)
	}
	p.container = NewScrollBarContainer(p.edit.VerticalScrollBar(), func() {
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
		return nil, fmt.Errorf("create controller: %w", err)
	}
	p.ctrl = ctrl
	ctrl.OnScrollComplete(func() {
		p.showMessage("End of script. Press space to play again.")
	})
	if opts.AutoStart {
		p.loop.Post(func() { p.start() })
	}
	return p, nil
}

func (p *Prompter) build() {
	t := p.opts.Theme
	p.root = qt.NewQWidget2()

	p.edit = qt.NewQTextEdit2()
	p.edit.SetReadOnly(true)
	p.edit.SetPlainText(p.opts.Text)
	p.edit.SetHorizontalScrollBarPolicy(qt.ScrollBarAlwaysOff)
	p.edit.SetFocusPolicy(qt.StrongFocus)
	p.edit.SetStyleSheet(fmt.Sprintf(`
		QTextEdit {
			color: %s;
			background-color: %s;
			border: none;
		}`, t.Foreground.ToHex(), t.Background.ToHex()))
	p.edit.Document().SetDocumentMargin(float64(p.opts.Margin))
	p.applyFont()

	p.edit.OnKeyPressEvent(func(super func(event *qt.QKeyEvent), event *qt.QKeyEvent) {
		if p.HandleKey(qt.Key(event.Key())) {
			event.Accept()
			return
		}
		super(event)
	})
	p.edit.OnShowEvent(func(super func(event *qt.QShowEvent), event *qt.QShowEvent) {
		super(event)
		p.vis.SetHidden(false)
	})
	// Minimizing the window sends a spontaneous hide to its children
	p.edit.OnHideEvent(func(super func(event *qt.QHideEvent), event *qt.QHideEvent) {
		super(event)
		p.vis.SetHidden(true)
	})
	p.edit.OnResizeEvent(func(super func(event *qt.QResizeEvent), event *qt.QResizeEvent) {
		if p.ctrl != nil {
			p.beginReflow()
		}
		super(event)
	})
	p.edit.VerticalScrollBar().OnRangeChanged(func(_, _ int) {
		if p.reflowPending {
			p.endReflow()
		}
	})

	p.label = qt.NewQLabel3("")
	p.button = qt.NewQPushButton3("")
	p.button.OnClicked(p.onNoticeAction)
	p.bar = qt.NewQWidget2()
	p.bar.SetStyleSheet(fmt.Sprintf("QLabel { color: %s; }", t.Notice.ToHex()))
	barLayout := qt.NewQHBoxLayout2()
	barLayout.AddWidget(p.label.QWidget)
	barLayout.AddWidget(p.button.QWidget)
	p.bar.SetLayout(barLayout.QLayout)
	p.bar.Hide()

	layout := qt.NewQVBoxLayout2()
	layout.SetContentsMargins(0, 0, 0, 0)
	layout.AddWidget(p.edit.QWidget)
	layout.AddWidget(p.bar)
	p.root.SetLayout(layout.QLayout)
}

func (p *Prompter) applyFont() {
	size := int(float64(p.fontSize) * qtFontSizeScale)
	p.edit.SetFont(qt.NewQFont6(p.opts.FontFamily, size))
}

// Widget returns the top-level widget
func (p *Prompter) Widget() *qt.QWidget {
	return p.root
}

// Controller returns the scroll controller
func (p *Prompter) Controller() *purfectscroll.Controller {
	return p.ctrl
}

// SetText replaces the script, keeping the reading position proportionally
func (p *Prompter) SetText(text string) {
	p.opts.Text = text
	p.beginReflow()
	p.edit.SetPlainText(text)
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
	p.applyFont()
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
func (p *Prompter) HandleKey(key qt.Key) bool {
	switch key {
	case qt.Key_Space:
		p.toggle()
	case qt.Key_Plus, qt.Key_Equal:
		p.ctrl.SetSpeed(p.ctrl.Speed() + p.opts.SpeedStep)
	case qt.Key_Minus, qt.Key_Underscore:
		p.ctrl.SetSpeed(p.ctrl.Speed() - p.opts.SpeedStep)
	case qt.Key_BracketLeft:
		p.SetFontSize(p.fontSize - 2)
	case qt.Key_BracketRight:
		p.SetFontSize(p.fontSize + 2)
	case qt.Key_R:
		if err := p.ctrl.RetryWakeLock(); err != nil {
			p.log.Debug("wake lock retry refused", "error", err)
		}
	case qt.Key_Escape, qt.Key_S:
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
