package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Easy-Infra-Ltd/easy-content-gate/src/gateway"
	"github.com/Easy-Infra-Ltd/easy-content-gate/src/sanitizer"
)

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one-shot checks; exits non-zero when input is rejected",
	}
	cmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print the result as JSON")

	cmd.AddCommand(a.checkPromptCmd(), a.checkUploadCmd())
	return cmd
}

func (a *app) checkPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt [text...]",
		Short: "Check a generation prompt; reads stdin when no text is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}

			gate, err := a.buildGate()
			if err != nil {
				return err
			}

			res, checkErr := gate.CheckPrompt(cmd.Context(), text)
			out := gateway.PromptOutput{Allowed: checkErr == nil, Text: res.Text, Modified: res.Modified}
			if checkErr != nil {
				out.Reason = checkErr.Error()
			}

			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else if checkErr == nil {
				fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			}
			return checkErr
		},
	}
}

func (a *app) checkUploadCmd() *cobra.Command {
	var name, mimeType string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Check an upload's MIME type and sanitize its file name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gate, err := a.buildGate()
			if err != nil {
				return err
			}

			res, checkErr := gate.CheckUpload(cmd.Context(), name, mimeType)
			out := gateway.UploadOutput{Allowed: checkErr == nil, MimeType: res.MimeType}
			if res.HasName {
				out.Filename = &res.Filename
			}
			if checkErr != nil {
				out.Reason = checkErr.Error()
			}

			if a.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else if checkErr == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", res.Filename, res.MimeType)
			}
			return checkErr
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "declared file name")
	cmd.Flags().StringVar(&mimeType, "mime", "", "declared MIME type")
	_ = cmd.MarkFlagRequired("mime")
	return cmd
}

func (a *app) buildGate() (*sanitizer.Gate, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return gateway.BuildGate(cfg.Gate, a.logger)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
