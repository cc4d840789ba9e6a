package types

// Board is the single shared document every session mirrors.
//
//	title:     fixed board name, never client-settable
//	sections:  ordered list of Section (max 100)
//	updatedAt: server timestamp of the last accepted update
type Board struct {
	Title     string    `json:"title"`
	Sections  []Section `json:"sections"`
	UpdatedAt string    `json:"updatedAt"`
}

// Section:
//
//	id:    unique within the board
//	title: 1..80 chars, "Untitled" when blank
//	tasks: ordered list of Task (max 500)
type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

// Task:
//
//	id:      unique within its section
//	text:    1..220 chars; a task with blank text is dropped
//	done:    checkbox state
//	starred: priority marker
type Task struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Done    bool   `json:"done"`
	Starred bool   `json:"starred"`
}

// Clone returns a deep copy so callers can mutate sections and tasks freely.
func (b Board) Clone() Board {
	out := Board{Title: b.Title, UpdatedAt: b.UpdatedAt, Sections: make([]Section, len(b.Sections))}
	for i, s := range b.Sections {
		tasks := make([]Task, len(s.Tasks))
		copy(tasks, s.Tasks)
		out.Sections[i] = Section{ID: s.ID, Title: s.Title, Tasks: tasks}
	}
	return out
}

// FindSection returns the index of the section with id, or -1.
func (b Board) FindSection(id string) int {
	for i := range b.Sections {
		if b.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

// FindTask returns the index of the task with id, or -1.
func (s Section) FindTask(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}
