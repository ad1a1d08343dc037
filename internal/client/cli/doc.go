// Package cli implements the notes command-line client.
//
// Each invocation runs one command:
//
//	register                     create an account (prompts)
//	login                        log in and save the token
//	logout                       forget the saved token
//	notes                        list notes you can access
//	show <id>                    print one note
//	create [text...]             create a note; prompts when text is omitted
//	update <id> [text...]        replace a note's text
//	attach <id> <file>           upload an image to a note
//	delete <id>                  delete a note
//	share <id> <userID>          give another user access
//	unshare <id> <userID>        take access away
package cli
