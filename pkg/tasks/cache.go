package tasks

import (
	"encoding/gob"
	"os"
)

func init() {
	gob.Register(TaskList{})
	gob.Register(Task{})
	gob.Register(ScriptCommand{})
	gob.Register(TaskRef{})
}

// WriteCache stores a parsed task list together with the option values it was
// parsed with, so the next invocation can skip the Starlark run.
func WriteCache(file string, options map[string]string, list TaskList) error {
	handle, err := os.Create(file)
	if err != nil {
		return err
	}
	defer handle.Close()

	encoder := gob.NewEncoder(handle)
	if err := encoder.Encode(options); err != nil {
		return err
	}

	return encoder.Encode(list)
}

// ReadCache is the counterpart to WriteCache.
func ReadCache(file string) (map[string]string, TaskList, error) {
	handle, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	defer handle.Close()

	decoder := gob.NewDecoder(handle)

	var options map[string]string
	if err := decoder.Decode(&options); err != nil {
		return nil, nil, err
	}

	var result TaskList
	if err := decoder.Decode(&result); err != nil {
		return options, nil, err
	}

	return options, result, nil
}
