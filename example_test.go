package todoroll_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/todoroll"
)

// Example_basic rolls a weekly note over into the next week.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "todoroll-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	note := "| Task | Prio | Due | Done |\n|---|---|---|---|\n| ship it | 1 | Fri | |\n| lunch | 2 | Mon | X |\n"
	if err := os.MkdirAll(filepath.Join(tmpDir, "Tasks"), 0755); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "Tasks", "todo-2025-01-06.md"), []byte(note), 0644); err != nil {
		log.Fatal(err)
	}

	svc, err := todoroll.New(tmpDir,
		todoroll.WithAutoInit(true),
		todoroll.WithVersioning(false),
		todoroll.WithNotifier(quiet{}),
		todoroll.WithClock(func() time.Time { return time.Date(2025, 1, 15, 9, 0, 0, 0, time.Local) }),
	)
	if err != nil {
		log.Fatal(err)
	}

	res, err := svc.Roll(context.Background(), todoroll.DefaultSettings(), false)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.Outcome, res.Target, res.Archive, res.Carried)
	// Output:
	// rolled Tasks/todo-2025-01-13.md Tasks/Archive/todo-2025-01-06.md 1
}

type quiet struct{}

func (quiet) Notify(string) {}
