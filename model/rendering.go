package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
)

const (
	gridPosBlock      = "██"
	gridPosEmpty      = "  "
	gridPosLockedLive = "▓▓"
	gridPosLockedDead = "░░"

	macosClearCmd = "clear"
)

// TerminalRenderer implements basic terminal rendering
type TerminalRenderer struct{}

// Display renders the grid to w, one text row per grid row
func (r *TerminalRenderer) Display(w io.Writer, g *Grid) error {
	bw := bufio.NewWriter(w)
	for row := range g.rows {
		for col := range g.cols {
			cell := g.cells[row][col]
			switch {
			case cell.Locked && cell.Alive:
				bw.WriteString(gridPosLockedLive)
			case cell.Locked:
				bw.WriteString(gridPosLockedDead)
			case cell.Alive:
				bw.WriteString(gridPosBlock)
			default:
				bw.WriteString(gridPosEmpty)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Clear clears the terminal screen
func (r *TerminalRenderer) Clear() {
	cmd := exec.Command(macosClearCmd)
	cmd.Stdout = os.Stdout
	if err := cmd.Run(); err != nil {
		fmt.Println("Error clearing terminal:", err)
	}
}
