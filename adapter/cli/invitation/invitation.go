package invitation

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/gatherly/adapter/cli"
	invitationQueries "github.com/felixgeelhaar/gatherly/internal/invitations/application/queries"
	"github.com/spf13/cobra"
)

// Cmd is the invitation command group.
var Cmd = &cobra.Command{
	Use:     "invitation",
	Aliases: []string{"invite"},
	Short:   "Invite visitors to meetings",
	Long: `Invite visitors, reissue payment links, cancel invitations, and
confirm payments without a provider in development.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(communityCmd)
	Cmd.AddCommand(linkCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(simulateCmd)
}

func printInvitation(out io.Writer, inv invitationQueries.InvitationDTO) {
	fmt.Fprintf(out, "  %s <%s>\n", inv.VisitorName, inv.Email)
	fmt.Fprintf(out, "    ID: %s\n", inv.ID)
	fmt.Fprintf(out, "    Status: %s\n", inv.Status)
	if inv.Amount > 0 {
		fmt.Fprintf(out, "    Fee: %s\n", cli.FormatAmount(inv.Amount, inv.Currency))
	} else {
		fmt.Fprintln(out, "    Fee: waived")
	}
	if inv.PaymentLink != "" {
		fmt.Fprintf(out, "    Payment link: %s\n", inv.PaymentLink)
	}
	if inv.PaymentID != "" {
		fmt.Fprintf(out, "    Payment: %s\n", inv.PaymentID)
	}
	if inv.CancelReason != "" {
		fmt.Fprintf(out, "    Cancelled: %s\n", inv.CancelReason)
	}
}
