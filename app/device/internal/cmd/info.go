package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/meta-secret/meta-secret/app/device/internal/cmd/format"
	"github.com/meta-secret/meta-secret/app/device/internal/localstate"
	metacrypto "github.com/meta-secret/meta-secret/internal/crypto"
)

type deviceInfo struct {
	DeviceName string `json:"deviceName" yaml:"deviceName"`
	DeviceId   string `json:"deviceId" yaml:"deviceId"`
}

type userInfo struct {
	VaultName string `json:"vaultName" yaml:"vaultName"`
	UserId    string `json:"userId" yaml:"userId"`
}

type memberInfo struct {
	DeviceName string `json:"deviceName" yaml:"deviceName"`
	DeviceId   string `json:"deviceId" yaml:"deviceId"`
	Status     string `json:"status" yaml:"status"`
}

type vaultInfo struct {
	VaultName string       `json:"vaultName" yaml:"vaultName"`
	Members   []memberInfo `json:"members" yaml:"members"`
}

type secretInfo struct {
	Name string `json:"name" yaml:"name"`
	Id   string `json:"id" yaml:"id"`
}

type infoResult struct {
	Device  *deviceInfo  `json:"device,omitempty" yaml:"device,omitempty"`
	User    *userInfo    `json:"user,omitempty" yaml:"user,omitempty"`
	Vault   *vaultInfo   `json:"vault,omitempty" yaml:"vault,omitempty"`
	Secrets []secretInfo `json:"secrets,omitempty" yaml:"secrets,omitempty"`
}

// newInfoCommand prints the requested slice of local state, syncing
// first for every subject except device (which is read locally only).
// With no subject it prints everything this device currently knows.
func newInfoCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "info [device|user|vault|secrets]",
		Short: "show local device/user/vault/secrets state, after a sync",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := "all"
			if len(args) == 1 {
				subject = args[0]
			}

			outFormat, err := format.GetFormat(cmd)
			if err != nil {
				return err
			}

			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.close()

			km, device, err := localstate.LoadDeviceCreds(sess.repository())
			if err != nil {
				return err
			}
			defer km.Close()

			var result infoResult
			if subject == "all" || subject == "device" {
				deviceId := metacrypto.DeviceIdFromOpenBox(km.ToOpenBox())
				result.Device = &deviceInfo{DeviceName: device.DeviceName, DeviceId: deviceId.String()}
			}

			if subject == "all" || subject == "user" || subject == "vault" || subject == "secrets" {
				self, err := localstate.LoadUserData(sess.repository())
				if err != nil {
					return err
				}
				ctx := backgroundCtx()
				if err := sess.sync(ctx, self); err != nil {
					return err
				}

				if subject == "all" || subject == "user" {
					result.User = &userInfo{VaultName: string(self.VaultName), UserId: self.UserId().DeviceId.String()}
				}

				if subject == "all" || subject == "vault" || subject == "secrets" {
					vault, ok, err := localstate.LatestVault(sess.repository(), self.VaultName)
					if err != nil {
						return err
					}
					if ok {
						if subject == "all" || subject == "vault" {
							info := &vaultInfo{VaultName: string(vault.VaultName)}
							for _, membership := range vault.Users {
								status := "member"
								if !membership.IsMember() {
									status = string(membership.Status)
								}
								info.Members = append(info.Members, memberInfo{
									DeviceName: membership.User.Device.DeviceName,
									DeviceId:   membership.User.DeviceId().String(),
									Status:     status,
								})
							}
							result.Vault = info
						}
						if subject == "all" || subject == "secrets" {
							for _, passId := range vault.Secrets {
								result.Secrets = append(result.Secrets, secretInfo{Name: passId.Name, Id: passId.Id.String()})
							}
						}
					}
				}
			}

			return format.Render(cmd.OutOrStdout(), outFormat, result, renderInfoHuman)
		},
	}
	format.AddFormatFlag(c)
	return c
}

func renderInfoHuman(w io.Writer, v any) error {
	info := v.(infoResult)
	if info.Device != nil {
		fmt.Fprintf(w, "device: %s (%s)\n", info.Device.DeviceName, info.Device.DeviceId)
	}
	if info.User != nil {
		fmt.Fprintf(w, "vault:  %s\n", info.User.VaultName)
	}
	if info.Vault != nil {
		fmt.Fprintf(w, "members:\n")
		for _, m := range info.Vault.Members {
			fmt.Fprintf(w, "  - %s (%s) [%s]\n", m.DeviceName, m.DeviceId, m.Status)
		}
	}
	if info.Secrets != nil {
		fmt.Fprintf(w, "secrets:\n")
		for _, s := range info.Secrets {
			fmt.Fprintf(w, "  - %s (%s)\n", s.Name, s.Id)
		}
	}
	return nil
}
