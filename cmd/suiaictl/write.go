package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"SuiAI-SDK/sdk/go/suiai"

	"github.com/spf13/cobra"
)

func newModelCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage AI models",
	}

	var file string
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a model described by a JSON file",
		Long: `Register a model and transfer it to the signer.

The file holds a model config, for example:
  {"name":"resnet","description":"classifier","model_type":1,"version":"1.0.0",
   "model_hash":"sha256:...","model_url":"ipfs://...","input_shape":[1,3,224,224],
   "output_shape":[1000],"model_size_bytes":102400,"max_inference_time_ms":500,
   "required_memory_mb":512,"supported_formats":["onnx"],"is_public":true}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("读取模型配置失败: %w", err)
			}
			var model suiai.ModelConfig
			if err := json.Unmarshal(content, &model); err != nil {
				return fmt.Errorf("解析模型配置失败: %w", err)
			}

			a, err := openApp(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer a.close()

			receipt, err := a.sdk.CreateModelReceipt(cmd.Context(), model)
			if err != nil {
				return err
			}
			return printReceipt(flags, "Model created", receipt)
		},
	}
	create.Flags().StringVarP(&file, "file", "f", "", "model config JSON file")
	_ = create.MarkFlagRequired("file")
	cmd.AddCommand(create)
	return cmd
}

func newAgentCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage AI agents",
	}

	var cfg suiai.AgentConfig
	create := &cobra.Command{
		Use:   "create",
		Short: "Register an agent bound to an existing model",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer a.close()

			receipt, err := a.sdk.CreateAgentReceipt(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return printReceipt(flags, "Agent created", receipt)
		},
	}
	f := create.Flags()
	f.StringVar(&cfg.Name, "name", "", "agent name")
	f.StringVar(&cfg.Description, "description", "", "agent description")
	f.StringVar(&cfg.ModelID, "model", "", "object id of the model")
	f.StringArrayVar(&cfg.Capabilities, "capability", nil, "capability tag (repeatable)")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("model")
	cmd.AddCommand(create)
	return cmd
}

func newInferCmd(flags *rootFlags) *cobra.Command {
	var (
		agentID   string
		requestID string
		input     string
		inputHex  string
		inputFile string
		modelType uint8
	)
	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Run inference on an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(input, inputHex, inputFile)
			if err != nil {
				return err
			}
			if requestID == "" {
				requestID = suiai.NewRequestID()
			}

			a, err := openApp(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer a.close()

			resp, err := a.sdk.ExecuteInference(cmd.Context(), agentID, suiai.ExecutionContext{
				RequestID: requestID,
				InputData: data,
				ModelType: modelType,
			})
			if err != nil {
				// 执行失败时仍输出请求 ID 与 gas，便于对账。
				dimColor.Fprintf(os.Stderr, "request %s, gas used %d\n", resp.RequestID, resp.GasUsed)
				return err
			}
			if flags.jsonOutput {
				return printJSON(resp)
			}
			okColor.Println("Inference completed")
			printField("Request ID", resp.RequestID)
			printField("Output", hex.EncodeToString(resp.OutputData))
			printField("Confidence", resp.ConfidenceScore)
			printField("Time (ms)", resp.ExecutionTimeMs)
			printField("Gas used", resp.GasUsed)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&agentID, "agent", "", "object id of the agent")
	f.StringVar(&requestID, "request-id", "", "request id (random when empty)")
	f.StringVar(&input, "input", "", "input data as text")
	f.StringVar(&inputHex, "input-hex", "", "input data as hex")
	f.StringVar(&inputFile, "input-file", "", "read input data from a file")
	f.Uint8Var(&modelType, "model-type", 0, "model type used to pick the output decoder")
	_ = cmd.MarkFlagRequired("agent")
	return cmd
}

func readInput(text, hexInput, file string) ([]byte, error) {
	set := 0
	for _, v := range []string{text, hexInput, file} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return nil, errors.New("--input, --input-hex 与 --input-file 只能指定一个")
	}
	switch {
	case hexInput != "":
		data, err := hex.DecodeString(strings.TrimPrefix(hexInput, "0x"))
		if err != nil {
			return nil, fmt.Errorf("解析十六进制输入失败: %w", err)
		}
		return data, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("读取输入文件失败: %w", err)
		}
		return data, nil
	default:
		return []byte(text), nil
	}
}

func printReceipt(flags *rootFlags, title string, receipt suiai.Receipt) error {
	if flags.jsonOutput {
		return printJSON(receipt)
	}
	okColor.Println(title)
	printField("Digest", receipt.Digest)
	for _, id := range receipt.CreatedObjects {
		printField("Created", id)
	}
	printField("Gas used", receipt.GasUsed)
	return nil
}
