package toybox_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/KDL-umass/Toybox"
	"github.com/KDL-umass/Toybox/pkg/adapters/memory"
	"github.com/KDL-umass/Toybox/pkg/amidar"
)

// ExampleToybox_Amidar removes the last enemy and shows that the change was
// written back exactly once.
func ExampleToybox_Amidar() {
	data, err := os.ReadFile("pkg/amidar/testdata/start.json")
	if err != nil {
		log.Fatal(err)
	}
	eng, err := memory.NewEngineJSON(amidar.GameName, data)
	if err != nil {
		log.Fatal(err)
	}

	tb := toybox.New(eng)
	ctx := context.Background()

	err = tb.Amidar(ctx, func(iv *amidar.Intervention) error {
		return iv.RemoveEnemy(iv.NumEnemies() - 1)
	})
	if err != nil {
		log.Fatal(err)
	}

	_ = tb.Amidar(ctx, func(iv *amidar.Intervention) error {
		fmt.Println("enemies:", iv.NumEnemies())
		return nil
	})
	fmt.Println("writes:", eng.Writes())

	// Output:
	// enemies: 4
	// writes: 1
}
