package correct

// Minimal bracket-aware scanning over TypeScript source. Strings, template
// literals and comments are skipped so braces inside them do not count.

// skip returns the index just past a string or comment starting at i, or i
// when none starts there.
func skip(s string, i int) int {
	if i >= len(s) {
		return i
	}
	switch c := s[i]; c {
	case '\'', '"', '`':
		for j := i + 1; j < len(s); j++ {
			switch s[j] {
			case '\\':
				j++
			case c:
				return j + 1
			}
		}
		return len(s)
	case '/':
		if i+1 < len(s) && s[i+1] == '/' {
			for j := i + 2; j < len(s); j++ {
				if s[j] == '\n' {
					return j
				}
			}
			return len(s)
		}
		if i+1 < len(s) && s[i+1] == '*' {
			for j := i + 2; j+1 < len(s); j++ {
				if s[j] == '*' && s[j+1] == '/' {
					return j + 2
				}
			}
			return len(s)
		}
	}
	return i
}

func isOpen(c byte) bool  { return c == '{' || c == '[' || c == '(' }
func isClose(c byte) bool { return c == '}' || c == ']' || c == ')' }

// walk visits every code byte in s[from:to] with its nesting depth relative
// to from. Openers are reported at the outer depth, closers at the inner.
// fn returns false to stop.
func walk(s string, from, to int, fn func(i, depth int) bool) {
	if to > len(s) {
		to = len(s)
	}
	depth := 0
	for i := from; i < to; {
		if j := skip(s, i); j != i {
			i = j
			continue
		}
		c := s[i]
		if isClose(c) {
			depth--
		}
		if !fn(i, depth) {
			return
		}
		if isOpen(c) {
			depth++
		}
		i++
	}
}

// matchClose returns the index of the bracket closing the opener at open,
// or -1 when it is unbalanced.
func matchClose(s string, open int) int {
	if open < 0 || open >= len(s) || !isOpen(s[open]) {
		return -1
	}
	found := -1
	walk(s, open, len(s), func(i, depth int) bool {
		if i > open && depth == 0 && isClose(s[i]) {
			found = i
			return false
		}
		return true
	})
	return found
}

// enclosingOpen returns the index of the innermost opener that contains pos,
// or -1 at top level.
func enclosingOpen(s string, pos int) int {
	var stack []int
	walk(s, 0, pos, func(i, _ int) bool {
		switch {
		case isOpen(s[i]):
			stack = append(stack, i)
		case isClose(s[i]) && len(stack) > 0:
			stack = stack[:len(stack)-1]
		}
		return true
	})
	if len(stack) == 0 {
		return -1
	}
	return stack[len(stack)-1]
}

// inCode reports whether pos is outside every string and comment.
func inCode(s string, pos int) bool {
	ok := false
	walk(s, 0, pos+1, func(i, _ int) bool {
		if i == pos {
			ok = true
			return false
		}
		return true
	})
	return ok
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// prevNonSpace returns the index of the last non-space byte before i, or -1.
func prevNonSpace(s string, i int) int {
	for j := i - 1; j >= 0; j-- {
		if !isSpace(s[j]) {
			return j
		}
	}
	return -1
}

// nextNonSpace returns the index of the first non-space byte at or after i, or len(s).
func nextNonSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}
