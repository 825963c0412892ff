package panel

import (
	"encoding/json"
	"testing"
)

func TestImportLayoutFromLayoutFile(t *testing.T) {
	src, nodes := buildTestLayout(t)
	data, err := ExportLayout(src)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ImportLayout(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Main" {
		t.Errorf("name = %q, want Main", got.Name)
	}
	if got.ID == src.ID {
		t.Error("import kept the layout id")
	}
	for i, c := range got.Controls {
		if c.ID == src.Controls[i].ID {
			t.Errorf("control %q kept its id", c.Name)
		}
	}
	// Preset node ids are kept on import, unlike duplication.
	for name, n := range nodes {
		if !got.PresetTree.Contains(n.ID) {
			t.Errorf("preset %s lost its id on import", name)
		}
	}
	// Control links still resolve against the imported tree.
	for _, pid := range got.Controls[0].PresetIDs {
		if !got.PresetTree.Contains(pid) {
			t.Errorf("imported control references unknown preset %s", pid)
		}
	}
}

func TestImportLayoutFromStateFile(t *testing.T) {
	first := NewLayout("First")
	second, _ := buildTestLayout(t)
	s := &State{
		Host:             "10.0.0.2",
		Port:             "9000",
		Layouts:          []*Layout{first, second},
		SelectedLayoutID: second.ID,
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ImportLayout(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Main" {
		t.Errorf("picked layout %q, want the selected one (Main)", got.Name)
	}

	// Without a valid selection the first layout wins.
	s.SelectedLayoutID = "gone"
	data, _ = json.Marshal(s)
	got, err = ImportLayout(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "First" {
		t.Errorf("picked layout %q, want First", got.Name)
	}
}

func TestImportLayoutDedupesName(t *testing.T) {
	src, _ := buildTestLayout(t)
	data, err := ExportLayout(src)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		taken []string
		want  string
	}{
		{nil, "Main"},
		{[]string{"Other"}, "Main"},
		{[]string{"Main"}, "Main (2)"},
		{[]string{"Main", "Main (2)"}, "Main (3)"},
	}
	for _, tt := range tests {
		got, err := ImportLayout(data, tt.taken)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != tt.want {
			t.Errorf("taken %v: name = %q, want %q", tt.taken, got.Name, tt.want)
		}
	}
}

func TestImportLayoutRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"wrong shape", `{"foo": 1}`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ImportLayout([]byte(tt.data), nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestImportNormalizesControls(t *testing.T) {
	// Hand-written file with a broken grid and an out-of-range choice.
	data := []byte(`{
		"name": "Handmade",
		"controls": [
			{"name": "Pads", "address": "pads", "type": "padGrid",
			 "padGrid": {"gridRows": 2, "gridCols": 3, "gridIsMomentary": false}},
			{"name": "Mode", "address": "/mode", "type": "choice",
			 "choice": {"choiceOptions": ["a", "b"], "choiceIndex": 7}}
		]
	}`)
	got, err := ImportLayout(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	pads := got.Controls[0]
	if pads.Address != "/pads" {
		t.Errorf("address = %q, want leading slash restored", pads.Address)
	}
	if len(pads.PadGrid.States) != 6 {
		t.Errorf("grid states = %d, want rows*cols = 6", len(pads.PadGrid.States))
	}
	if got.Controls[1].Choice.Index != 0 {
		t.Errorf("choice index = %d, want clamped to 0", got.Controls[1].Choice.Index)
	}
	if got.PresetTree == nil || got.PresetTree.Len() != 0 {
		t.Error("missing tree should materialize empty")
	}
}

func TestExportLayoutIsSortedAndStable(t *testing.T) {
	src, _ := buildTestLayout(t)

	data, err := ExportLayout(src)
	if err != nil {
		t.Fatal(err)
	}
	again, err := ExportLayout(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(again) {
		t.Error("export of unchanged layout is not byte-stable")
	}

	// The export must round-trip through the importer.
	var generic map[string]interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if generic["name"] != "Main" {
		t.Errorf("exported name = %v", generic["name"])
	}
	if _, ok := generic["presetTree"]; !ok {
		t.Error("export lost the preset tree")
	}
}
