// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sitecheck

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// controlRefAttr tags every form control so later actions can address it
const controlRefAttr = "data-sitecheck-ref"

// Browser owns one headless Chrome process. Tabs opened from it run in
// separate browser contexts and share no cookies or storage.
type Browser struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	cfg           BrowserConfig
	logger        logrus.FieldLogger
}

// NewBrowser starts Chrome. The process lives until Close is called.
func NewBrowser(cfg BrowserConfig, logger logrus.FieldLogger) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.ViewportWidth > 0 && cfg.ViewportHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	b := &Browser{cfg: cfg, logger: orDiscard(logger)}
	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	b.browserCtx, b.browserCancel = chromedp.NewContext(b.allocCtx)

	// The first Run launches the process.
	if err := chromedp.Run(b.browserCtx); err != nil {
		b.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return b, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (b *Browser) Close() {
	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
}

// NewTab opens a tab in a fresh browser context.
func (b *Browser) NewTab() (*Tab, error) {
	ctx, cancel := chromedp.NewContext(b.browserCtx, chromedp.WithNewBrowserContext())
	t := &Tab{
		ctx:    ctx,
		cancel: cancel,
		cfg:    b.cfg,
		logger: b.logger,
	}
	chromedp.ListenTarget(ctx, t.onEvent)

	actions := []chromedp.Action{
		network.Enable(),
		page.SetLifecycleEventsEnabled(true),
	}
	if b.cfg.ViewportWidth > 0 && b.cfg.ViewportHeight > 0 {
		actions = append(actions, chromedp.EmulateViewport(int64(b.cfg.ViewportWidth), int64(b.cfg.ViewportHeight)))
	}
	if err := chromedp.Run(ctx, actions...); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	// The main frame of a page target shares the target's ID.
	if c := chromedp.FromContext(ctx); c != nil && c.Target != nil {
		t.setMainFrame(cdp.FrameID(c.Target.TargetID))
	}
	return t, nil
}

// Tab is one browser page. It renders pages for the crawler and scan pipeline
// and drives forms for the FormTester. A Tab is not safe for concurrent use.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    BrowserConfig
	logger logrus.FieldLogger

	mu        sync.Mutex
	mainFrame cdp.FrameID
	idle      chan struct{}
	sawInit   bool
	docState  int64
}

// Close closes the tab and its browser context.
func (t *Tab) Close() {
	t.cancel()
}

func (t *Tab) setMainFrame(id cdp.FrameID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mainFrame = id
}

// onEvent tracks the main document. Events from iframes are ignored once the
// main frame is known.
func (t *Tab) onEvent(ev any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch ev := ev.(type) {
	case *page.EventFrameNavigated:
		if ev.Frame != nil && ev.Frame.ParentID == "" {
			t.mainFrame = ev.Frame.ID
		}
	case *page.EventLifecycleEvent:
		if !t.isMainFrame(ev.FrameID) {
			return
		}
		switch ev.Name {
		case "init":
			t.sawInit = true
		case "networkIdle":
			if t.sawInit && t.idle != nil {
				close(t.idle)
				t.idle = nil
			}
		}
	case *network.EventResponseReceived:
		if !t.isMainFrame(ev.FrameID) {
			return
		}
		if ev.Type == network.ResourceTypeDocument && ev.Response != nil && t.docState == 0 {
			t.docState = ev.Response.Status
		}
	}
}

// isMainFrame must be called with t.mu held.
func (t *Tab) isMainFrame(id cdp.FrameID) bool {
	return t.mainFrame == "" || id == t.mainFrame
}

// arm prepares a fresh network-idle signal for the next navigation.
func (t *Tab) arm() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan struct{})
	t.idle = ch
	t.sawInit = false
	t.docState = 0
	return ch
}

func (t *Tab) documentStatus() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.docState
}

// callContext derives a context from the tab that is cancelled by ctx or after timeout.
func (t *Tab) callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(t.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(t.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (t *Tab) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := t.callContext(ctx, timeout)
	defer cancel()
	err := chromedp.Run(runCtx, actions...)
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// Navigate loads u and waits until the network has been idle, bounded by the
// quiescence timeout. Error statuses of the main document are returned as *FetchError.
func (t *Tab) Navigate(ctx context.Context, u string) error {
	idle := t.arm()
	if err := t.run(ctx, t.cfg.NavigationTimeout, chromedp.Navigate(u)); err != nil {
		return fmt.Errorf("navigate %s: %w", u, err)
	}
	if status := t.documentStatus(); status >= 400 {
		return &FetchError{URL: u, StatusCode: int(status)}
	}

	wait := t.cfg.QuiescenceTimeout
	if wait <= 0 {
		wait = DefaultConfig().Browser.QuiescenceTimeout
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-idle:
		return nil
	case <-timer.C:
		return fmt.Errorf("wait for network idle on %s: %w", u, ErrTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Render navigates to u and returns the rendered document.
func (t *Tab) Render(ctx context.Context, u string) (string, error) {
	if err := t.Navigate(ctx, u); err != nil {
		return "", err
	}
	var html string
	if err := t.run(ctx, t.cfg.NavigationTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read document %s: %w", u, err)
	}
	return html, nil
}

const visibleJS = `const visible = el => {
	const s = window.getComputedStyle(el);
	const r = el.getBoundingClientRect();
	return s.display !== 'none' && s.visibility !== 'hidden' && (r.width > 0 || r.height > 0);
};`

const controlsJS = `(() => {
	` + visibleJS + `
	const forms = Array.from(document.forms);
	return Array.from(document.querySelectorAll('input, textarea, select, button')).map((el, i) => {
		el.setAttribute('` + controlRefAttr + `', String(i));
		const tag = el.tagName.toLowerCase();
		const type = (el.getAttribute('type') || '').toLowerCase();
		const clickable = tag === 'button' || type === 'submit' || type === 'button';
		return {
			ref: String(i),
			tag: tag,
			type: type,
			name: el.getAttribute('name') || '',
			id: el.id || '',
			placeholder: el.getAttribute('placeholder') || '',
			text: clickable ? (el.innerText || el.value || '').trim() : '',
			class: typeof el.className === 'string' ? el.className : '',
			visible: visible(el),
			disabled: !!el.disabled,
			value: el.value || '',
			form: el.form ? forms.indexOf(el.form) : -1,
		};
	});
})()`

const formsJS = `(() => {
	` + visibleJS + `
	return Array.from(document.forms).map((f, i) => ({
		index: i,
		id: f.id || '',
		class: typeof f.className === 'string' ? f.className : '',
		visible: visible(f),
		inputs: f.querySelectorAll('input:not([type=hidden]):not([type=submit]):not([type=button]):not([type=reset]):not([type=image]), textarea, select').length,
		submits: f.querySelectorAll('button[type=submit], input[type=submit], button:not([type])').length,
	}));
})()`

const feedbackJS = `(() => {
	` + visibleJS + `
	const marked = Array.from(document.querySelectorAll('[class*="success"]')).some(visible);
	return {text: document.body ? document.body.innerText : '', successElement: marked};
})()`

func refSelector(ref string) string {
	return "[" + controlRefAttr + "=" + strconv.Quote(ref) + "]"
}

// Controls snapshots every form control on the page.
func (t *Tab) Controls(ctx context.Context) ([]Control, error) {
	var controls []Control
	if err := t.run(ctx, t.cfg.NavigationTimeout, chromedp.Evaluate(controlsJS, &controls)); err != nil {
		return nil, fmt.Errorf("snapshot controls: %w", err)
	}
	return controls, nil
}

// Forms summarises every form on the page.
func (t *Tab) Forms(ctx context.Context) ([]FormInfo, error) {
	var forms []FormInfo
	if err := t.run(ctx, t.cfg.NavigationTimeout, chromedp.Evaluate(formsJS, &forms)); err != nil {
		return nil, fmt.Errorf("snapshot forms: %w", err)
	}
	return forms, nil
}

func (t *Tab) present(ctx context.Context, ref string) error {
	var ok bool
	js := "!!document.querySelector(" + strconv.Quote(refSelector(ref)) + ")"
	if err := t.run(ctx, t.cfg.NavigationTimeout, chromedp.Evaluate(js, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("control %s: %w", ref, ErrElementNotFound)
	}
	return nil
}

// Fill replaces the value of the control with value by typing it.
func (t *Tab) Fill(ctx context.Context, ref, value string) error {
	if err := t.present(ctx, ref); err != nil {
		return err
	}
	sel := refSelector(ref)
	return t.run(ctx, t.cfg.NavigationTimeout,
		chromedp.ScrollIntoView(sel, chromedp.ByQuery),
		chromedp.Clear(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	)
}

// Click clicks the control. The page may navigate as a result.
func (t *Tab) Click(ctx context.Context, ref string) error {
	if err := t.present(ctx, ref); err != nil {
		return err
	}
	sel := refSelector(ref)
	return t.run(ctx, t.cfg.NavigationTimeout,
		chromedp.ScrollIntoView(sel, chromedp.ByQuery),
		chromedp.Click(sel, chromedp.ByQuery),
	)
}

// Value reports the current state of a control. A control that left the
// document is reported as not present rather than as an error.
func (t *Tab) Value(ctx context.Context, ref string) (ControlState, error) {
	js := `(() => {
		` + visibleJS + `
		const el = document.querySelector(` + strconv.Quote(refSelector(ref)) + `);
		if (!el) return {present: false};
		return {present: true, visible: visible(el), disabled: !!el.disabled, value: el.value || ''};
	})()`
	var state ControlState
	if err := t.run(ctx, t.cfg.NavigationTimeout, chromedp.Evaluate(js, &state)); err != nil {
		return ControlState{}, fmt.Errorf("read control %s: %w", ref, err)
	}
	return state, nil
}

// Feedback returns the visible page text and whether a visible element carries a success class.
func (t *Tab) Feedback(ctx context.Context) (Feedback, error) {
	var fb Feedback
	if err := t.run(ctx, t.cfg.NavigationTimeout, chromedp.Evaluate(feedbackJS, &fb)); err != nil {
		return Feedback{}, fmt.Errorf("read feedback: %w", err)
	}
	return fb, nil
}
