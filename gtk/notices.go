package purfectscrollgtk

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

// showMessage sets a transient hint that outranks notices; "" clears it
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
		p.noticeLabel.SetText(p.message)
		p.noticeButton.Hide()
		p.noticeBox.Show()
		p.noticeLabel.Show()
		return
	}
	n, ok := p.topNotice()
	if !ok {
		p.noticeBox.Hide()
		return
	}
	p.noticeLabel.SetText(n.Message)
	p.noticeLabel.Show()
	if n.Action != "" {
		p.noticeButton.SetLabel(n.Action)
		p.noticeButton.Show()
	} else {
		p.noticeButton.Hide()
	}
	p.noticeBox.Show()
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
