package cli

import (
	"fmt"
	"strings"
)

// Shells lists the shells InitScript knows.
var Shells = []string{"zsh", "bash"}

// Both widgets bind Ctrl-Space. An empty result means the user quit, so the
// buffer is only replaced when there is output. The cursor comes back through
// a per-shell file and falls back to the end of the line.
const zshInit = `# histcomp: eval "$(%[1]s -init zsh)"
_histcomp_widget() {
  local out pos=${TMPDIR:-/tmp}/histcomp.$$.cursor
  out=$(%[1]q -line "$BUFFER" -cursor "$CURSOR" -cursor-file "$pos")
  if [[ -n $out ]]; then
    BUFFER=$out
    CURSOR=${#BUFFER}
    [[ -s $pos ]] && CURSOR=$(<"$pos")
  fi
  rm -f "$pos"
  zle reset-prompt
}
zle -N _histcomp_widget
bindkey '^@' _histcomp_widget
`

const bashInit = `# histcomp: eval "$(%[1]s -init bash)"
_histcomp_widget() {
  local out pos=${TMPDIR:-/tmp}/histcomp.$$.cursor
  out=$(%[1]q -line "$READLINE_LINE" -cursor "$READLINE_POINT" -cursor-file "$pos")
  if [[ -n $out ]]; then
    READLINE_LINE=$out
    READLINE_POINT=${#READLINE_LINE}
    [[ -s $pos ]] && READLINE_POINT=$(<"$pos")
  fi
  rm -f "$pos"
}
bind -x '"\C-@": _histcomp_widget'
`

// InitScript returns the snippet that hooks binary into shell's line editor.
func InitScript(shell, binary string) (string, error) {
	switch strings.ToLower(shell) {
	case "zsh":
		return fmt.Sprintf(zshInit, binary), nil
	case "bash":
		return fmt.Sprintf(bashInit, binary), nil
	}
	return "", fmt.Errorf("unsupported shell %q (want one of %s)", shell, strings.Join(Shells, ", "))
}
