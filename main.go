package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"oscpanel/config"
	"oscpanel/debug"
	"oscpanel/midi"
	"oscpanel/osc"
	"oscpanel/panel"
	"oscpanel/theme"
	"oscpanel/tui"
)

func main() {
	debugFlag := flag.Bool("debug", false, "write a debug log to ~/.config/oscpanel/debug.log")
	paletteFlag := flag.String("palette", "", "path to a GIMP palette file (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if *debugFlag || cfg.Debug {
		debug.Enable()
		defer debug.Disable()
	}

	palettePath := cfg.UI.PaletteFile
	if *paletteFlag != "" {
		palettePath = *paletteFlag
	}
	pal := theme.Default()
	if palettePath != "" {
		loaded, err := theme.LoadGPL(palettePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "palette: %v\n", err)
			os.Exit(1)
		}
		pal = loaded
	}
	th := theme.New(pal)

	panel.S = panel.LoadState()
	if panel.S.Host == panel.DefaultHost && cfg.OSC.Host != "" {
		panel.S.Host = cfg.OSC.Host
	}
	if panel.S.Port == panel.DefaultPort && cfg.OSC.Port != "" {
		panel.S.Port = cfg.OSC.Port
	}

	client := osc.NewClient()
	defer client.Close()

	var mirror panel.ValueMirror
	if cfg.MIDI.Enabled {
		mirror = midi.NewBridge(cfg.MIDI.PortName, uint8(cfg.MIDI.Channel))
	}

	manager := panel.NewManager(client, mirror)
	manager.StartRuntime()
	defer manager.Shutdown()

	p := tea.NewProgram(tui.NewModel(manager, th), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
