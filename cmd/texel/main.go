package main

import (
	"fmt"
	"math"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/texel-ml/texel/internal/config"
	"github.com/texel-ml/texel/internal/conv"
	"github.com/texel-ml/texel/internal/gpu"
	"github.com/texel-ml/texel/internal/logger"
	"github.com/texel-ml/texel/internal/ops"
	"github.com/texel-ml/texel/internal/tensor"
)

var version = "dev"

func main() {
	cfg := config.Default()
	var rootLogger *zap.Logger

	app := &cli.App{
		Name:  "texel",
		Usage: "Texture-path convolution dispatch engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the engine config file",
			},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("config"); path != "" {
				loaded, err := config.LoadConfig(path)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			zapLogger, err := logger.New(cfg.Logger.Verbosity)
			if err != nil {
				return err
			}
			rootLogger = zapLogger.Named("texel")
			return nil
		},
		Commands: []*cli.Command{
			adaptersCommand(),
			selftestCommand(&cfg, &rootLogger),
			{
				Name:  "version",
				Usage: "Print the engine version",
				Action: func(c *cli.Context) error {
					fmt.Println(version)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		if rootLogger != nil {
			rootLogger.Fatal("command failed", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func adaptersCommand() *cli.Command {
	return &cli.Command{
		Name:  "adapters",
		Usage: "List available GPU adapters",
		Action: func(c *cli.Context) error {
			adapters, err := gpu.ListAdapters()
			if err != nil {
				return err
			}
			for i, info := range adapters {
				fmt.Printf("%d: %s (%s)\n", i, info.Device, info.Vendor)
			}
			return nil
		},
	}
}

// selftestCommand runs one fused convolution on the device and checks it
// against the CPU reference.
func selftestCommand(cfg **config.Config, rootLogger **zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "selftest",
		Usage: "Run a device convolution and verify it against the CPU reference",
		Action: func(c *cli.Context) error {
			log := *rootLogger
			engine, err := gpu.New(gpu.Options{
				Logger:       log,
				Power:        gpu.PowerPreference((*cfg).GPU.PowerPreference),
				MaxBatchSize: (*cfg).GPU.MaxBatchSize,
			})
			if err != nil {
				return err
			}
			defer engine.Release()

			const (
				n, cIn, inH, inW = 1, 3, 16, 16
				cOut, kSize      = 8, 3
			)
			x := rampTensor(tensor.Shape{n, cIn, inH, inW}, 0.05)
			w := rampTensor(tensor.Shape{cOut, cIn, kSize, kSize}, -0.01)
			bias := make([]float32, cOut)
			for i := range bias {
				bias[i] = float32(i) * 0.25
			}

			attrs := ops.Attributes{
				"pads":       []int64{1, 1, 1, 1},
				"activation": "Relu",
			}
			kernel, err := conv.NewKernel(engine, log, attrs, ops.DeclaredShape{cOut, cIn, kSize, kSize})
			if err != nil {
				return err
			}
			defer kernel.Release()
			if _, err := kernel.PrePack(w, 1); err != nil {
				return err
			}

			xDev, err := engine.UploadNCHW(x)
			if err != nil {
				return err
			}
			defer xDev.Release()
			biasRaw, err := tensor.FromFloat32(bias, tensor.Shape{cOut})
			if err != nil {
				return err
			}
			biasDev, err := engine.UploadChannels(biasRaw)
			if err != nil {
				return err
			}
			defer biasDev.Release()

			y, err := kernel.Compute(xDev, biasDev)
			if err != nil {
				return err
			}
			defer y.Release()
			got, err := engine.ReadNCHW(y)
			if err != nil {
				return err
			}

			want, err := conv.ReferenceConv2D(x, w, bias,
				[]int64{1, 1}, []int64{1, 1, 1, 1}, []int64{1, 1}, 1,
				kernel.Activation())
			if err != nil {
				return err
			}

			maxErr := maxAbsDiff(got.Float32s(), want.Float32s())
			log.Info("selftest complete",
				zap.String("adapter", engine.Name()),
				zap.Stringer("output", got.Shape()),
				zap.Float64("maxAbsError", maxErr))
			if maxErr > 1e-3 {
				return fmt.Errorf("selftest: max abs error %g exceeds tolerance", maxErr)
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func rampTensor(shape tensor.Shape, step float32) *tensor.RawTensor {
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = float32(i%17)*step - float32(i%5)*step*2
	}
	t, err := tensor.FromFloat32(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

func maxAbsDiff(a, b []float32) float64 {
	var m float64
	for i := range a {
		d := math.Abs(float64(a[i]) - float64(b[i]))
		if d > m {
			m = d
		}
	}
	return m
}
