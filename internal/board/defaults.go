package board

import "github.com/DoyleJ11/board-sync/pkg/types"

var defaultTasks = []string{
	"Legge flis i gangen",
	"Fuge flis",
	"Silikonere",
	"Fikse flis i entré",
	"Pusse ferdig vegg",
	"Male vegger",
}

// Default is the seeded board used on first run or when storage is corrupt.
func Default() types.Board {
	tasks := make([]types.Task, 0, len(defaultTasks))
	for _, text := range defaultTasks {
		tasks = append(tasks, types.Task{ID: NewID("task"), Text: text})
	}
	return types.Board{
		Title: Title,
		Sections: []types.Section{
			{ID: NewID("section"), Title: "Entré", Tasks: tasks},
		},
		UpdatedAt: defaultNormalizer.Clock.Stamp(),
	}
}

// Empty is a board with no sections.
func Empty() types.Board {
	return types.Board{Title: Title, Sections: []types.Section{}, UpdatedAt: defaultNormalizer.Clock.Stamp()}
}
