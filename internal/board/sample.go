package board

import "github.com/twiced-technology-gmbh/laneboard/internal/task"

// Sample returns the demo board: the canonical columns seeded with five
// tasks. Ids are fixed so the board is reproducible.
func Sample() Board {
	john := task.User{ID: "u1", Name: "John Doe", Avatar: "https://i.pravatar.cc/150?img=1"}
	jane := task.User{ID: "u2", Name: "Jane Smith", Avatar: "https://i.pravatar.cc/150?img=2"}
	mike := task.User{ID: "u3", Name: "Mike Johnson", Avatar: "https://i.pravatar.cc/150?img=3"}
	sarah := task.User{ID: "u4", Name: "Sarah Wilson", Avatar: "https://i.pravatar.cc/150?img=4"}

	b := New(DefaultColumns())
	place := func(column string, t task.Task) {
		t.Column = column
		ci := b.ColumnIndex(column)
		b.Columns[ci].Tasks = append(b.Columns[ci].Tasks, t)
	}

	place(Todo, task.Task{
		ID:          "1",
		Title:       "Implement Authentication",
		Description: "Add user authentication using NextAuth.js",
		Priority:    task.High,
		DueDate:     "2024-04-15",
		Assignees:   []task.User{john},
		Tags: []task.Tag{
			{ID: "t1", Name: "Feature", Color: "#0ea5e9"},
			{ID: "t2", Name: "Security", Color: "#ef4444"},
		},
	})
	place(Todo, task.Task{
		ID:          "2",
		Title:       "Design System Setup",
		Description: "Create reusable components and style guide",
		Priority:    task.Medium,
		DueDate:     "2024-04-20",
		Assignees:   []task.User{jane},
		Tags:        []task.Tag{{ID: "t3", Name: "UI", Color: "#8b5cf6"}},
	})
	place(InProgress, task.Task{
		ID:          "3",
		Title:       "API Integration",
		Description: "Connect frontend with backend API endpoints",
		Priority:    task.High,
		DueDate:     "2024-04-10",
		Assignees:   []task.User{john, mike},
		Tags: []task.Tag{
			{ID: "t4", Name: "Backend", Color: "#84cc16"},
			{ID: "t5", Name: "Integration", Color: "#f59e0b"},
		},
	})
	place(Review, task.Task{
		ID:          "4",
		Title:       "Performance Optimization",
		Description: "Optimize app performance and loading times",
		Priority:    task.Medium,
		DueDate:     "2024-04-12",
		Assignees:   []task.User{sarah},
		Tags:        []task.Tag{{ID: "t6", Name: "Performance", Color: "#ec4899"}},
	})
	place(Done, task.Task{
		ID:          "5",
		Title:       "Project Setup",
		Description: "Initialize project and set up development environment",
		Priority:    task.Low,
		DueDate:     "2024-04-05",
		Assignees:   []task.User{john},
		Tags:        []task.Tag{{ID: "t7", Name: "Setup", Color: "#64748b"}},
	})
	return b
}
