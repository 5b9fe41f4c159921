package state

import (
	"time"

	"github.com/UkralStul/academic-feed/internal/domain"
)

// SeedEntries - стартовое наполнение ленты, если в хранилище еще нет записей.
func SeedEntries(now time.Time, authorID string) []domain.Entry {
	return []domain.Entry{
		{
			ID:          "1",
			AuthorID:    authorID,
			Category:    "Technology",
			SubCategory: "Artificial Intelligence",
			Topic:       "Large Language Models",
			Question:    "How does the attention mechanism improve model performance?",
			Answer: "The attention mechanism allows models to focus on specific parts of the input sequence " +
				"when producing an output, effectively giving different weights to different words depending " +
				"on their relevance in context. This solves the long-term dependency problem found in traditional RNNs.",
			Source:    `Vaswani et al. (2017), "Attention Is All You Need"`,
			CreatedAt: now.Add(-1000 * time.Second),
			Likes:     []string{},
			Dislikes:  []string{},
			Comments:  []domain.Comment{},
			MediaKind: domain.MediaNone,
		},
		{
			ID:          "2",
			AuthorID:    authorID,
			Category:    "Science",
			SubCategory: "Quantum Physics",
			Topic:       "Entanglement",
			Question:    "What is Quantum Entanglement in simple terms?",
			Answer: "Quantum entanglement is a physical phenomenon that occurs when a pair or group of particles " +
				"is generated, interact, or share spatial proximity in a way such that the quantum state of each " +
				"particle of the pair or group cannot be described independently of the state of the others.",
			Source:    "Niels Bohr Institute - Quantum Mechanics Fundamentals",
			CreatedAt: now.Add(-500 * time.Second),
			Likes:     []string{},
			Dislikes:  []string{},
			Comments:  []domain.Comment{},
			MediaKind: domain.MediaNone,
		},
	}
}
