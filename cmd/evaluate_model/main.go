package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"kurirai/evaluation"
	"kurirai/logging"
	"kurirai/ml"
)

func main() {
	dataPath := flag.String("data", "", "labelled shipments (.csv or .xlsx)")
	sheet := flag.String("sheet", "", "worksheet name for .xlsx input (default: first sheet)")
	modelPath := flag.String("model_path", "model_rf_bandung.json", "model artifact")
	modelType := flag.String("model_type", ml.ModelTypeRandomForest, "model type")
	logLevel := flag.String("log_level", "info", "log level")
	flag.Parse()

	logCfg := logging.DefaultConfig()
	logCfg.Level = *logLevel
	logger, err := logging.New(logCfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *dataPath == "" {
		logger.Fatal("data is required")
	}

	predictor, err := ml.NewPredictor(ml.FileModelHandle(*modelType, *modelPath), 0, nil)
	if err != nil {
		logger.Fatal("failed to build predictor", zap.Error(err))
	}
	if err := predictor.Ready(); err != nil {
		logger.Fatal("failed to load model", zap.String("path", *modelPath), zap.Error(err))
	}

	samples, err := evaluation.ReadSamples(*dataPath, *sheet)
	if err != nil {
		logger.Fatal("failed to read dataset", zap.String("path", *dataPath), zap.Error(err))
	}
	logger.Info("dataset loaded", zap.Int("samples", len(samples)))

	report, err := evaluation.Evaluate(context.Background(), predictor, samples)
	if err != nil {
		logger.Fatal("evaluation failed", zap.Error(err))
	}
	if err := report.Write(os.Stdout); err != nil {
		logger.Fatal("failed to write report", zap.Error(err))
	}
}
