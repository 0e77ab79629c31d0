package generator

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"
)

type OperationType string

const (
	OpTransfer OperationType = "transfer"
	OpBalance  OperationType = "balance"
)

// Scenario drives the load generator. InitialBalance and the amount
// bounds are minor units (cents), matching the API's int64 amount field
// directly rather than dollars.
type Scenario struct {
	Name             string                    `json:"name"`
	Description      string                    `json:"description"`
	Accounts         int                       `json:"accounts"`
	TargetOperations int64                     `json:"target_operations"`
	Operations       []Operation               `json:"operations"`
	Distribution     map[OperationType]float64 `json:"distribution"`
	InitialBalance   int64                     `json:"initial_balance"`
	MinAmount        int64                     `json:"min_amount"`
	MaxAmount        int64                     `json:"max_amount"`
	ThinkTime        time.Duration             `json:"think_time"`
}

type Operation struct {
	Type      OperationType `json:"type"`
	AccountID string        `json:"account_id,omitempty"`
	FromID    string        `json:"from_id,omitempty"`
	ToID      string        `json:"to_id,omitempty"`
	Amount    int64         `json:"amount,omitempty"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	if err := json.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if s.Accounts <= 0 {
		return fmt.Errorf("accounts must be positive")
	}

	total := 0.0
	for _, weight := range s.Distribution {
		total += weight
	}

	if total < 0.99 || total > 1.01 {
		return fmt.Errorf("distribution weights must sum to 1.0")
	}

	return nil
}

func (s *Scenario) GenerateOperation(accountIDs []string) Operation {
	r := rand.Float64()
	cumulative := 0.0

	for opType, weight := range s.Distribution {
		cumulative += weight
		if r <= cumulative {
			return s.createOperation(opType, accountIDs)
		}
	}

	return s.createOperation(OpBalance, accountIDs)
}

func (s *Scenario) createOperation(opType OperationType, accountIDs []string) Operation {
	op := Operation{Type: opType}

	switch opType {
	case OpTransfer:
		fromIdx := rand.Intn(len(accountIDs))
		toIdx := rand.Intn(len(accountIDs))
		for toIdx == fromIdx && len(accountIDs) > 1 {
			toIdx = rand.Intn(len(accountIDs))
		}
		op.FromID = accountIDs[fromIdx]
		op.ToID = accountIDs[toIdx]
		op.Amount = s.generateValidAmount()
	case OpBalance:
		op.AccountID = accountIDs[rand.Intn(len(accountIDs))]
	}

	return op
}

func (s *Scenario) generateValidAmount() int64 {
	minAmount := s.MinAmount
	if minAmount < 1 {
		minAmount = 1
	}
	span := s.MaxAmount - minAmount
	if span <= 0 {
		return minAmount
	}
	return minAmount + rand.Int63n(span+1)
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name:        "Default Transfer Load Test",
		Description: "Balanced mix of transfers and balance reads with realistic amounts",
		Accounts:    1000,
		Distribution: map[OperationType]float64{
			OpTransfer: 0.60,
			OpBalance:  0.40,
		},
		InitialBalance: 100000,
		MinAmount:      100,
		MaxAmount:      1000,
		ThinkTime:      10 * time.Millisecond,
	}
}

func HighConcurrencyScenario() *Scenario {
	return &Scenario{
		Name:        "High Concurrency Transfer Test",
		Description: "Heavy transfer load to test deadlock prevention",
		Accounts:    100,
		Distribution: map[OperationType]float64{
			OpTransfer: 0.90,
			OpBalance:  0.10,
		},
		InitialBalance: 50000,
		MinAmount:      100,
		MaxAmount:      5000,
		ThinkTime:      1 * time.Millisecond,
	}
}

func ReadHeavyScenario() *Scenario {
	return &Scenario{
		Name:        "Read Heavy Load Test",
		Description: "Mostly balance reads with occasional transfers",
		Accounts:    5000,
		Distribution: map[OperationType]float64{
			OpTransfer: 0.20,
			OpBalance:  0.80,
		},
		InitialBalance: 100000,
		MinAmount:      50,
		MaxAmount:      500,
		ThinkTime:      5 * time.Millisecond,
	}
}