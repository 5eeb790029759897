package purfectscroll

// NoticeKind identifies a user-facing notice
type NoticeKind int

const (
	NoticeManualScroll        NoticeKind = iota // Paused because the user scrolled
	NoticeWakeLockUnsupported                   // Playing without a wake lock
	NoticeWakeLockFailed                        // Wake lock retries exhausted
)

// Notice is a non-blocking message for the host UI
type Notice struct {
	Kind        NoticeKind
	Message     string
	Dismissible bool
	Persistent  bool   // Stays until dismissed by the controller
	Action      string // Label for the affordance, empty for none
	Err         error
}

// Notifier displays notices. Show with a kind already shown replaces it.
type Notifier interface {
	Show(n Notice)
	Dismiss(kind NoticeKind)
}

type discardNotifier struct{}

func (discardNotifier) Show(Notice)        {}
func (discardNotifier) Dismiss(NoticeKind) {}

func manualScrollNotice() Notice {
	return Notice{
		Kind:        NoticeManualScroll,
		Message:     "Auto-scroll paused. Tap to resume.",
		Dismissible: true,
		Action:      "Resume",
		Err:         ErrManualScrollDetected,
	}
}

func wakeLockUnsupportedNotice() Notice {
	return Notice{
		Kind:       NoticeWakeLockUnsupported,
		Message:    "Screen wake lock is not available. The display may dim during playback.",
		Persistent: true,
		Err:        ErrWakeLockUnsupported,
	}
}

func wakeLockFailedNotice(err error) Notice {
	return Notice{
		Kind:        NoticeWakeLockFailed,
		Message:     "Could not keep the screen awake.",
		Dismissible: true,
		Action:      "Retry",
		Err:         err,
	}
}
