package modal

// ScrollToEnd 远大于任何实际内容高度，由视口裁剪到底部。
const ScrollToEnd = 100000.0

// Scroll 记录当前偏移与下一次布局要应用的目标偏移。
// current 只在布局之后由实际渲染结果回写。
type Scroll struct {
	current        float64
	pending        float64
	hasPending     bool
	viewportHeight float64
}

func (s *Scroll) Current() float64 { return s.current }

// Pending 返回待应用的目标偏移。
func (s *Scroll) Pending() (float64, bool) { return s.pending, s.hasPending }

func (s *Scroll) ViewportHeight() float64 { return s.viewportHeight }

func (s *Scroll) SetViewportHeight(h float64) {
	if h < 0 {
		h = 0
	}
	s.viewportHeight = h
}

// Request 设置下一次布局的目标偏移，负数按 0 处理。
func (s *Scroll) Request(target float64) {
	if target < 0 {
		target = 0
	}
	s.pending = target
	s.hasPending = true
}

func (s *Scroll) Down(step float64) { s.Request(s.current + step) }
func (s *Scroll) Up(step float64)   { s.Request(s.current - step) }
func (s *Scroll) Top()              { s.Request(0) }
func (s *Scroll) Bottom()           { s.Request(ScrollToEnd) }

// Layout 执行一次布局：把目标偏移（可能没有）交给 apply，再用 apply 返回的实际偏移更新 current。
// 无论 apply 成功与否，pending 都会被清除；失败时 current 保持不变。
func (s *Scroll) Layout(apply func(target float64, ok bool) (float64, error)) error {
	target, ok := s.pending, s.hasPending
	s.pending, s.hasPending = 0, false
	actual, err := apply(target, ok)
	if err != nil {
		return err
	}
	if actual < 0 {
		actual = 0
	}
	s.current = actual
	return nil
}
