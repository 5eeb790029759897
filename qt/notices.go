package purfectscrollqt

import "github.com/phroun/purfectscroll"

var noticeOrder = []purfectscroll.NoticeKind{
	purfectscroll.NoticeManualScroll,
	purfectscroll.NoticeWakeLockFailed,
	purfectscroll.NoticeWakeLockUnsupported,
}

// Show implements purfectscroll.Notifier
func (p *Prompter) Show(n purfectscroll.Notice) {
	p.notices[n.Kind] = n
	p.updateNoticeBar()
}

// Dismiss implements purfectscroll.Notifier
func (p *Prompter) Dismiss(kind purfectscroll.NoticeKind) {
	if _, ok := p.notices[kind]; ok {
		delete(p.notices, kind)
		p.updateNoticeBar()
	}
}

func (p *Prompter) showMessage(msg string) {
	p.message = msg
	p.updateNoticeBar()
}

func (p *Prompter) topNotice() (purfectscroll.Notice, bool) {
	for _, kind := range noticeOrder {
		if n, ok := p.notices[kind]; ok {
			return n, true
		}
	}
	return purfectscroll.Notice{}, false
}

func (p *Prompter) updateNoticeBar() {
	if p.message != "" {
		p.label.SetText(p.message)
		p.button.Hide()
		p.bar.Show()
		return
	}
	n, ok := p.topNotice()
	if !ok {
		p.bar.Hide()
		return
	}
	p.label.SetText(n.Message)
	p.button.SetVisible(n.Action != "")
	p.button.SetText(n.Action)
	p.bar.Show()
}

func (p *Prompter) onNoticeAction() {
	n, ok := p.topNotice()
	if !ok {
		return
	}
	var err error
	switch n.Kind {
	case purfectscroll.NoticeManualScroll:
		err = p.ctrl.Resume()
	case purfectscroll.NoticeWakeLockFailed:
		err = p.ctrl.RetryWakeLock()
	}
	if err != nil {
		p.log.Debug("notice action refused", "kind", n.Kind, "error", err)
	}
}
