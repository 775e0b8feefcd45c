package keystate

import "fmt"

// tracef emits one human-readable trace line identifying the operation and
// the calling goroutine. No-op unless the store was built WithTracing.
func (s *Store[S, C]) tracef(op string, gid int64, format string, args ...any) {
	if !s.cfg.trace {
		return
	}
	detail := ""
	if format != "" {
		detail = " " + fmt.Sprintf(format, args...)
	}
	fmt.Fprintf(s.cfg.traceOut, "keystate: %s goroutine=%d%s\n", op, gid, detail)
}
