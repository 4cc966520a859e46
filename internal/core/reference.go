package core

import (
	"time"
)

// ModelPerformanceRecord is static evaluation data for a tone model
type ModelPerformanceRecord struct {
	Name            string  `json:"name"`
	Accuracy        float64 `json:"accuracy"`
	Precision       float64 `json:"precision"`
	Recall          float64 `json:"recall"`
	F1Score         float64 `json:"f1Score"`
	ConfusionMatrix [][]int `json:"confusionMatrix"`
}

// SampleEmail is a canned email used for demonstrations
type SampleEmail struct {
	ID        string        `json:"id"`
	Subject   string        `json:"subject"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	Analysis  *ToneAnalysis `json:"analysis,omitempty"`
}

// ModelPerformance returns the reference comparison of the evaluated tone models
func ModelPerformance() []ModelPerformanceRecord {
	return []ModelPerformanceRecord{
		{
			Name:            "BERT-based Transformer",
			Accuracy:        0.94,
			Precision:       0.92,
			Recall:          0.93,
			F1Score:         0.925,
			ConfusionMatrix: [][]int{{156, 8, 2}, {7, 148, 12}, {3, 9, 162}},
		},
		{
			Name:            "RoBERTa Fine-tuned",
			Accuracy:        0.91,
			Precision:       0.89,
			Recall:          0.90,
			F1Score:         0.895,
			ConfusionMatrix: [][]int{{151, 12, 3}, {11, 142, 14}, {8, 13, 156}},
		},
		{
			Name:            "CNN-BiLSTM",
			Accuracy:        0.87,
			Precision:       0.85,
			Recall:          0.86,
			F1Score:         0.855,
			ConfusionMatrix: [][]int{{142, 18, 6}, {15, 135, 17}, {12, 21, 144}},
		},
		{
			Name:            "SVM + TF-IDF",
			Accuracy:        0.82,
			Precision:       0.80,
			Recall:          0.81,
			F1Score:         0.805,
			ConfusionMatrix: [][]int{{132, 24, 10}, {22, 128, 17}, {18, 28, 131}},
		},
	}
}

// SampleEmails returns the canned demonstration emails
func SampleEmails() []SampleEmail {
	return []SampleEmail{
		{
			ID:        "1",
			Subject:   "Quarterly Report Submission",
			Content:   "Hi team, I hope this email finds you well. I wanted to follow up on the quarterly report submission deadline. Please ensure all sections are completed by Friday. Thank you for your attention to this matter.",
			Timestamp: time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:        "2",
			Subject:   "URGENT: Server Maintenance",
			Content:   "URGENT!! The server will be down for maintenance tonight. This is critical and cannot be postponed. All users must save their work immediately!",
			Timestamp: time.Date(2024, time.January, 16, 14, 45, 0, 0, time.UTC),
		},
		{
			ID:        "3",
			Subject:   "Thank you for your support",
			Content:   "Dear colleagues, I wanted to express my heartfelt gratitude for your incredible support during this project. Your dedication has been truly inspiring!",
			Timestamp: time.Date(2024, time.January, 17, 9, 15, 0, 0, time.UTC),
		},
	}
}
