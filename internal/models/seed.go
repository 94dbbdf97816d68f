// internal/models/seed.go
package models

import "time"

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// SeedBusinessUnits returns the starter catalog every new session begins
// with. Premium and Mass LOBs ship with data; ECOM requires an upload.
func SeedBusinessUnits() []BusinessUnit {
	return []BusinessUnit{
		{
			ID:          "bu-premium",
			Name:        "Premium Order Services",
			Description: "High-value customer service operations with premium support",
			Color:       "#8B5CF6",
			LOBs: []LineOfBusiness{
				{
					ID:           "lob-premium-phone",
					Name:         "Phone",
					Description:  "Premium phone support services",
					HasData:      true,
					DataUploaded: datePtr(2024, time.January, 10),
					RecordCount:  1250,
				},
				{
					ID:           "lob-premium-chat",
					Name:         "Chat",
					Description:  "Premium chat support services",
					HasData:      true,
					DataUploaded: datePtr(2024, time.January, 10),
					RecordCount:  890,
				},
			},
		},
		{
			ID:          "bu-mass",
			Name:        "Mass Order Services",
			Description: "High-volume customer service operations",
			Color:       "#10B981",
			LOBs: []LineOfBusiness{
				{
					ID:           "lob-mass-phone",
					Name:         "Phone",
					Description:  "Mass market phone support",
					HasData:      true,
					DataUploaded: datePtr(2024, time.January, 8),
					RecordCount:  3450,
				},
				{
					ID:           "lob-mass-chat",
					Name:         "Chat",
					Description:  "Mass market chat support",
					HasData:      true,
					DataUploaded: datePtr(2024, time.January, 8),
					RecordCount:  2100,
				},
			},
		},
		{
			ID:          "bu-ecom",
			Name:        "ECOM",
			Description: "E-commerce platform services and support",
			Color:       "#F59E0B",
			LOBs: []LineOfBusiness{
				{
					ID:          "lob-ecom-phone",
					Name:        "Phone",
					Description: "E-commerce phone support",
				},
				{
					ID:          "lob-ecom-chat",
					Name:        "Chat",
					Description: "E-commerce chat support",
				},
			},
		},
	}
}

// SeedAgents returns the simulated agent roster for the activity monitor.
func SeedAgents() []Agent {
	return []Agent{
		{ID: "agent-01", Name: "Data Analysis Agent", Task: "Idle", Status: AgentIdle, SuccessRate: 99.2, AvgCompletionTime: 2500, ErrorCount: 4, CPUUsage: 5, MemoryUsage: 10},
		{ID: "agent-02", Name: "Preprocessing Agent", Task: "Idle", Status: AgentIdle, SuccessRate: 98.5, AvgCompletionTime: 4000, ErrorCount: 8, CPUUsage: 8, MemoryUsage: 15},
		{ID: "agent-03", Name: "Modeling Agent", Task: "Idle", Status: AgentIdle, SuccessRate: 97.1, AvgCompletionTime: 15000, ErrorCount: 12, CPUUsage: 12, MemoryUsage: 25},
		{ID: "agent-04", Name: "Evaluation Agent", Task: "Idle", Status: AgentIdle, SuccessRate: 100, AvgCompletionTime: 1800, ErrorCount: 0, CPUUsage: 4, MemoryUsage: 8},
		{ID: "agent-05", Name: "Forecasting Agent", Task: "Idle", Status: AgentIdle, SuccessRate: 99.8, AvgCompletionTime: 3200, ErrorCount: 2, CPUUsage: 6, MemoryUsage: 12},
	}
}

// DefaultWorkflow returns the canned forecasting plan used when the
// assistant starts a workflow without supplying an inline plan.
func DefaultWorkflow() []WorkflowStep {
	return []WorkflowStep{
		{
			ID:            "step-1",
			Name:          "Data Ingestion",
			Status:        StepPending,
			Dependencies:  []string{},
			EstimatedTime: "15s",
			Details:       "Upload and validate CSV/Excel data for the selected Line of Business.",
		},
		{
			ID:            "step-2",
			Name:          "Data Analysis",
			Status:        StepPending,
			Dependencies:  []string{"step-1"},
			EstimatedTime: "45s",
			Details:       "Perform exploratory data analysis to identify trends, seasonality, and anomalies.",
		},
		{
			ID:            "step-3",
			Name:          "Data Preprocessing",
			Status:        StepPending,
			Dependencies:  []string{"step-2"},
			EstimatedTime: "30s",
			Details:       "Clean data, handle missing values, and create features for modeling.",
		},
		{
			ID:            "step-4",
			Name:          "Model Training",
			Status:        StepPending,
			Dependencies:  []string{"step-3"},
			EstimatedTime: "2m 30s",
			Details:       "Train multiple forecasting models (e.g., ARIMA, XGBoost) in parallel.",
		},
		{
			ID:            "step-4-alt",
			Name:          "Fallback Model Training",
			Status:        StepPending,
			Dependencies:  []string{"step-3"},
			EstimatedTime: "2m 10s",
			Details:       "Train LightGBM as a fallback if primary models fail.",
		},
		{
			ID:            "step-5",
			Name:          "Model Evaluation",
			Status:        StepPending,
			Dependencies:  []string{"step-4"},
			EstimatedTime: "25s",
			Details:       "Evaluate models based on accuracy metrics (MAPE, RMSE) and select the best performer.",
		},
		{
			ID:            "step-6",
			Name:          "Generate Forecast",
			Status:        StepPending,
			Dependencies:  []string{"step-5"},
			EstimatedTime: "20s",
			Details:       "Generate future forecasts using the best-performing model.",
		},
		{
			ID:            "step-7",
			Name:          "Result Visualization",
			Status:        StepPending,
			Dependencies:  []string{"step-6"},
			EstimatedTime: "10s",
			Details:       "Create interactive charts and tables to display the forecast results.",
		},
	}
}
