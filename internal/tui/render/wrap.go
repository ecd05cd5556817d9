package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText 按终端显示宽度折行：先按词断开，单词本身超宽时再按字符切。
// 原文中的换行与空行保留，放得下的行原样输出（包括缩进）。
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	w := wrapper{limit: width}
	for _, para := range strings.Split(text, "\n") {
		if runewidth.StringWidth(para) <= width {
			w.out = append(w.out, para)
			continue
		}
		for word := range strings.FieldsSeq(para) {
			w.add(word)
		}
		w.flush()
	}
	return w.out
}

type wrapper struct {
	limit int
	out   []string
	cur   strings.Builder
	used  int
}

func (w *wrapper) flush() {
	if w.cur.Len() == 0 {
		return
	}
	w.out = append(w.out, w.cur.String())
	w.cur.Reset()
	w.used = 0
}

func (w *wrapper) add(word string) {
	ww := runewidth.StringWidth(word)
	if ww > w.limit {
		w.flush()
		for _, r := range word {
			rw := runewidth.RuneWidth(r)
			if w.cur.Len() > 0 && w.used+rw > w.limit {
				w.flush()
			}
			w.cur.WriteRune(r)
			w.used += rw
		}
		return
	}
	if w.cur.Len() > 0 && w.used+1+ww > w.limit {
		w.flush()
	}
	if w.cur.Len() > 0 {
		w.cur.WriteByte(' ')
		w.used++
	}
	w.cur.WriteString(word)
	w.used += ww
}
