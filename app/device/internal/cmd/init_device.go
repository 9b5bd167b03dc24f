package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	metacrypto "github.com/meta-secret/meta-secret/internal/crypto"
	"github.com/meta-secret/meta-secret/app/device/internal/localstate"
	"github.com/meta-secret/meta-secret/internal/model"
)

func newInitDeviceCommand() *cobra.Command {
	var deviceName string

	c := &cobra.Command{
		Use:   "init-device",
		Short: "generate a new device identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.close()

			km, err := metacrypto.GenerateKeyManager()
			if err != nil {
				return err
			}
			defer km.Close()

			device := model.DeviceData{DeviceName: deviceName}
			if err := localstate.SaveDeviceCreds(sess.repository(), km, device); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "device %q initialized\n", deviceName)
			return nil
		},
	}
	c.Flags().StringVar(&deviceName, "device-name", "", "human-facing name for this device")
	_ = c.MarkFlagRequired("device-name")
	return c
}
