package main

import (
	"encoding/json"

	"github.com/AaronLay10/pointclick/internal/save"
	"github.com/AaronLay10/pointclick/internal/scene"
)

// migrations returns the save upgrades of the bundled games.
func migrations() save.Registry {
	reg := save.Registry{}
	// manor v1 recorded the unlocked study as study_unlocked.
	reg.Register("manor", 1, renameFlag("study_unlocked", "study_open"))
	return reg
}

func renameFlag(from, to string) save.Migration {
	return func(data json.RawMessage) (json.RawMessage, error) {
		var st scene.GameState
		if err := json.Unmarshal(data, &st); err != nil {
			return nil, err
		}
		if v, ok := st.Flags[from]; ok {
			st.Flags[to] = v
			delete(st.Flags, from)
		}
		return json.Marshal(st)
	}
}
