package mocks

//go:generate mockgen -destination=./mock_models.go -package=mocks github.com/rxtech-lab/argo-fills/internal/securities ExerciseModel,FeeModel,FillModel,SettlementModel,SlippageModel
//go:generate mockgen -destination=./mock_brokerage.go -package=mocks github.com/rxtech-lab/argo-fills/internal/brokerage OrderProvider
