package session

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/signal"
)

const usage = `Commands (one per line or separated by ';', '#' starts a comment):

  open <port>                     open and claim port 1-8
  close <port>                    release and close a port
  closeall                        close every open port
  write <port> <value> [out]      drive D0-D7 to value (0-255)
  read <port> <line>...           sample lines
  set <port> <line>=<0|1>... [out]
                                  drive individual lines

Numbers are decimal, 0x hex or 0b binary. A line is a signal name or
<register>:<bit> with register data, status or control. Values are raw
register bits: inverted lines (marked *) show the opposite level at the
connector.
`

// Help describes the command language and lists the known signals.
func Help() string {
	var b strings.Builder
	b.WriteString(usage)
	b.WriteString("\nSignals:\n")
	for _, s := range signal.All() {
		inv := ""
		if s.Inverted {
			inv = "*"
		}
		fmt.Fprintf(&b, "  %-9s pin %-2d  %s:%d %s%s\n", s.Name, s.Pin, s.Register, s.Bit, s.Direction, inv)
	}
	return b.String()
}
