package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/phroun/purfectscroll"
	"golang.org/x/term"
	"pkt.systems/pslog"
)

// Options configures the terminal prompter
type Options struct {
	Text  string // Script text
	Title string // Shown in the top border

	Config        purfectscroll.Config
	FrameInterval time.Duration // Frame pacing (default: 1/60s)
	LineHeight    int           // Virtual pixels per row (default: 16)
	LineSpacing   int           // Blank rows after each line
	Margin        int           // Columns of padding on each side
	SpeedStep     float64       // Speed change per +/- key (default: 10)
	AutoStart     bool          // Start scrolling immediately

	BorderStyle   BorderStyle
	ShowStatusBar bool
	Theme         purfectscroll.Theme // Zero value: DarkTheme

	WakeLock purfectscroll.WakeLocker // nil: no wake lock
	Logger   pslog.Logger

	In  io.Reader // default: os.Stdin
	Out io.Writer // default: os.Stdout
}

const maxLineSpacing = 4

// Prompter is a teleprompter running in the host terminal
type Prompter struct {
	opts Options
	log  pslog.Logger

	loop purfectscroll.Loop
	ev   *purfectscroll.EventLoop

	ctrl     *purfectscroll.Controller
	view     *Viewport
	renderer *Renderer
	vis      *purfectscroll.Visibility
	decoder  Decoder

	notices map[purfectscroll.NoticeKind]purfectscroll.Notice
	message string
	spacing int
	dirty   bool

	stopRender func()
	quit       chan struct{}
	quitOnce   sync.Once
}

// New creates a prompter sized to the host terminal
func New(opts Options) (*Prompter, error) {
	opts = opts.withDefaults()
	ev := purfectscroll.NewEventLoop()
	cols, rows := hostSize(opts.Out)
	p, err := newPrompter(opts, ev, purfectscroll.NewTimerFrames(ev, opts.FrameInterval), cols, rows)
	if err != nil {
		return nil, err
	}
	p.ev = ev
	return p, nil
}

func (o Options) withDefaults() Options {
	if o.FrameInterval <= 0 {
		o.FrameInterval = time.Second / 60
	}
	if o.LineHeight <= 0 {
		o.LineHeight = 16
	}
	if o.SpeedStep <= 0 {
		o.SpeedStep = 10
	}
	if o.LineSpacing > maxLineSpacing {
		o.LineSpacing = maxLineSpacing
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Theme == (purfectscroll.Theme{}) {
		o.Theme = purfectscroll.DarkTheme()
	}
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Logger == nil {
		o.Logger = pslog.Ctx(context.Background())
	}
	return o
}

func newPrompter(opts Options, loop purfectscroll.Loop, frames purfectscroll.FrameSource, cols, rows int) (*Prompter, error) {
	p := &Prompter{
		opts:    opts,
		log:     opts.Logger.With("component", "cli"),
		loop:    loop,
		vis:     purfectscroll.NewVisibility(),
		notices: make(map[purfectscroll.NoticeKind]purfectscroll.Notice),
		spacing: opts.LineSpacing,
		quit:    make(chan struct{}),
	}
	p.renderer = NewRenderer(opts.Out, opts, cols, rows)
	_, height := p.renderer.TextArea()
	p.view = NewViewport(float64(opts.LineHeight), height)
	p.relayout()
	p.view.SetOnChange(func() { p.dirty = true })

	ctrl, err := purfectscroll.New(p.view, purfectscroll.Platform{
		Frames:     frames,
		Loop:       loop,
		WakeLock:   opts.WakeLock,
		Visibility: p.vis,
		Notifier:   p,
		Logger:     opts.Logger,
	}, opts.Config)
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}
	p.ctrl = ctrl
	ctrl.OnScrollProgress(func(float64, float64) { p.dirty = true })
	ctrl.OnTransition(func(purfectscroll.Transition) { p.dirty = true })
	ctrl.OnWakeLockChange(func(purfectscroll.WakeLockHandle) { p.dirty = true })
	ctrl.OnScrollComplete(func() {
		p.message = "End of script. Press space to play again."
		p.log.Info("script finished")
	})
	return p, nil
}

// hostSize returns the size of the terminal behind out
func hostSize(out io.Writer) (cols, rows int) {
	if f, ok := out.(*os.File); ok {
		if cols, rows, err := term.GetSize(int(f.Fd())); err == nil {
			return cols, rows
		}
	}
	return 80, 24
}

// Controller returns the scroll controller. Its methods must be called
// on the prompter's loop.
func (p *Prompter) Controller() *purfectscroll.Controller {
	return p.ctrl
}

// Run takes over the terminal until ctx is done or the user quits
func (p *Prompter) Run(ctx context.Context) error {
	if p.ev == nil {
		return errors.New("cli: prompter has no event loop")
	}
	restore, err := p.enterTerminal()
	if err != nil {
		return err
	}
	defer restore()

	loopDone := make(chan error, 1)
	go func() { loopDone <- p.ev.Run(context.Background()) }()

	stopSignals := watchResize(func() { p.loop.Post(p.handleResize) })
	defer stopSignals()
	go p.readInput()

	p.loop.Post(p.begin)

	select {
	case <-ctx.Done():
	case <-p.quit:
	}

	closed := make(chan struct{})
	p.loop.Post(func() {
		p.shutdown()
		close(closed)
	})
	<-closed
	p.ev.Close()
	return <-loopDone
}

func (p *Prompter) enterTerminal() (func(), error) {
	var restoreMode func()
	if f, ok := p.opts.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		old, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return nil, fmt.Errorf("failed to enter raw mode: %w", err)
		}
		restoreMode = func() { _ = term.Restore(int(f.Fd()), old) }
	}

	// Alternate screen, hidden cursor, focus reports
	_, _ = io.WriteString(p.opts.Out, "\033[?1049h\033[?25l\033[?1004h\033[2J\033[H")

	return func() {
		_, _ = io.WriteString(p.opts.Out, "\033[?1004l\033[0m\033[?25h\033[?1049l")
		if restoreMode != nil {
			restoreMode()
		}
	}, nil
}

func (p *Prompter) readInput() {
	buf := make([]byte, 256)
	for {
		n, err := p.opts.In.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			p.loop.Post(func() { p.handleInput(data) })
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.log.Debug("input closed", "error", err)
			}
			return
		}
	}
}

func (p *Prompter) begin() {
	p.render()
	p.scheduleRender()
	if p.opts.AutoStart {
		p.start()
	}
}

func (p *Prompter) scheduleRender() {
	p.stopRender = p.loop.AfterFunc(p.opts.FrameInterval, func() {
		if p.dirty {
			p.render()
		}
		p.scheduleRender()
	})
}

func (p *Prompter) shutdown() {
	if p.stopRender != nil {
		p.stopRender()
		p.stopRender = nil
	}
	p.ctrl.Close()
}

func (p *Prompter) requestQuit() {
	p.quitOnce.Do(func() { close(p.quit) })
}

func (p *Prompter) handleInput(data []byte) {
	for _, k := range p.decoder.Feed(data) {
		p.handleKey(k)
	}
}

func (p *Prompter) handleKey(k Key) {
	if k != KeyFocusIn && k != KeyFocusOut {
		p.message = ""
	}
	switch k {
	case KeyToggle:
		p.toggle()
	case KeyFaster:
		p.ctrl.SetSpeed(p.ctrl.Speed() + p.opts.SpeedStep)
	case KeySlower:
		p.ctrl.SetSpeed(p.ctrl.Speed() - p.opts.SpeedStep)
	case KeyLineUp:
		p.manualScroll(-1)
	case KeyLineDown:
		p.manualScroll(1)
	case KeyPageUp:
		p.manualScroll(-p.view.PageRows())
	case KeyPageDown:
		p.manualScroll(p.view.PageRows())
	case KeyTop:
		p.manualScroll(-p.view.RowCount())
	case KeyEnd:
		p.manualScroll(p.view.RowCount())
	case KeyLessSpacing:
		p.setSpacing(p.spacing - 1)
	case KeyMoreSpacing:
		p.setSpacing(p.spacing + 1)
	case KeyRetryWakeLock:
		if err := p.ctrl.RetryWakeLock(); err != nil {
			p.log.Debug("wake lock retry refused", "error", err)
		}
	case KeyStop:
		p.ctrl.StopScrolling()
	case KeyQuit:
		p.requestQuit()
	case KeyFocusIn:
		p.vis.SetHidden(false)
	case KeyFocusOut:
		p.vis.SetHidden(true)
	}
	p.dirty = true
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
	err := p.ctrl.StartScrolling()
	switch {
	case err == nil:
	case errors.Is(err, purfectscroll.ErrContentFits):
		p.message = "The whole script fits on screen."
	case errors.Is(err, purfectscroll.ErrWakeLockUnsupported):
		p.message = "Press space again to scroll without a wake lock."
	case errors.Is(err, purfectscroll.ErrWakeLockAcquisitionFailed):
		p.message = "Press space again to continue without a wake lock."
	}
	return err
}

// manualScroll moves the view the way a user scroll would, so the
// controller notices it
func (p *Prompter) manualScroll(rows int) {
	p.view.ScrollRows(rows)
	p.ctrl.HandleScrollEvent()
}

func (p *Prompter) setSpacing(n int) {
	if n < 0 {
		n = 0
	}
	if n > maxLineSpacing {
		n = maxLineSpacing
	}
	if n == p.spacing {
		return
	}
	p.spacing = n
	p.ctrl.Reflow(p.relayout)
}

func (p *Prompter) handleResize() {
	cols, rows := hostSize(p.opts.Out)
	p.resize(cols, rows)
}

func (p *Prompter) resize(cols, rows int) {
	p.renderer.Resize(cols, rows)
	p.ctrl.Reflow(p.relayout)
	p.dirty = true
}

func (p *Prompter) relayout() {
	width, height := p.renderer.TextArea()
	p.view.SetVisibleRows(height)
	p.view.SetRows(Layout(p.opts.Text, width, p.spacing))
}

func (p *Prompter) render() {
	p.dirty = false
	f := Frame{
		Rows:   p.view.VisibleRows(),
		Status: p.statusLine(p.renderer.Cols()),
		Notice: p.noticeLine(),
	}
	if err := p.renderer.Render(f); err != nil {
		p.log.Warn("render failed", "error", err)
	}
}

// statusField is one status bar entry. Fields with a lower keep rank are
// dropped first when the terminal is too narrow.
type statusField struct {
	text string
	keep int
}

const keepAlways = 4

// statusLine fits the status fields into width cells. The scroll state and
// the wake lock state are never dropped.
func (p *Prompter) statusLine(width int) string {
	ratio := 0.0
	if s, ok := p.ctrl.Session(); ok {
		ratio = s.Ratio()
	}
	fields := []statusField{
		{p.ctrl.Status().String(), keepAlways},
		{fmt.Sprintf("%.0f px/s", p.ctrl.Speed()), 3},
		{fmt.Sprintf("%3.0f%%", ratio*100), 2},
		{fmt.Sprintf("spacing %d", p.spacing), 0},
		{"wake lock: " + p.ctrl.WakeLock().Status.String(), keepAlways},
	}
	if p.ctrl.Degraded() {
		fields = append(fields, statusField{"polling", 1})
	}
	var line string
	for floor := 0; floor <= keepAlways; floor++ {
		line = joinStatus(fields, floor)
		if runewidth.StringWidth(line) <= width {
			break
		}
	}
	return line
}

func joinStatus(fields []statusField, floor int) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.keep >= floor {
			parts = append(parts, f.text)
		}
	}
	return " " + strings.Join(parts, " | ")
}

var actionKeys = map[string]string{
	"Resume": "space",
	"Retry":  "r",
}

var noticeOrder = []purfectscroll.NoticeKind{
	purfectscroll.NoticeManualScroll,
	purfectscroll.NoticeWakeLockFailed,
	purfectscroll.NoticeWakeLockUnsupported,
}

func (p *Prompter) noticeLine() string {
	if p.message != "" {
		return " " + p.message
	}
	for _, kind := range noticeOrder {
		n, ok := p.notices[kind]
		if !ok {
			continue
		}
		if key, ok := actionKeys[n.Action]; ok {
			return fmt.Sprintf(" %s [%s: %s]", n.Message, key, n.Action)
		}
		return " " + n.Message
	}
	return ""
}

// Show implements purfectscroll.Notifier
func (p *Prompter) Show(n purfectscroll.Notice) {
	p.notices[n.Kind] = n
	p.dirty = true
}

// Dismiss implements purfectscroll.Notifier
func (p *Prompter) Dismiss(kind purfectscroll.NoticeKind) {
	if _, ok := p.notices[kind]; ok {
		delete(p.notices, kind)
		p.dirty = true
	}
}
