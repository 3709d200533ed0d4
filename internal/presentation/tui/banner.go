package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for the chat command.
func PrintBanner() {
	p := termenv.ColorProfile()
	s1 := termenv.String(` __      __  _             _                       `).Foreground(p.Color("#38bdf8"))
	s2 := termenv.String(` \ \    / / (_) _ __    __| | _ __  ___   ___  ___ `).Foreground(p.Color("#60a5fa"))
	s3 := termenv.String(`  \ \/\/ /  | || '_ \  / _' || '__|/ _ \ / __|/ _ \`).Foreground(p.Color("#818cf8"))
	s4 := termenv.String(`   \_/\_/   |_||_| |_| \__,_||_|   \___/ |___/\___|`).Foreground(p.Color("#a78bfa"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println()
}
