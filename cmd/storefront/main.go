package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/localmart/storefront-client/internal/app"
	"github.com/localmart/storefront-client/internal/models"
	"github.com/localmart/storefront-client/internal/routing"
	"github.com/localmart/storefront-client/pkg/config"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("STOREFRONT_CONFIG")
	if cfgPath == "" {
		cfgPath = "storefront.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	a, err := app.New(cfg, nil)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	a.Start()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := run(ctx, a, os.Args[1], os.Args[2:]); err != nil {
		if a.HandleAuthFailure(err) {
			log.Fatal("your session has expired, please log in again")
		}
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: storefront <command> [flags]

commands:
  register   -name -email -password -role (customer|business)
  login      -email -password
  logout
  whoami
  browse     show the storefront landing page data
  cart       [show] | add -product -qty | set -product -qty | remove -product | clear
  orders     [list] | place -address -payment | cancel -id`)
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		role := fs.String("role", "customer", "customer or business")
		fs.Parse(args)

		choice := models.RoleChoice(*role)
		if errs := models.ValidateRegistrationForm(*name, *email, *password, choice); !errs.Ok() {
			return fmt.Errorf("invalid form: %v", errs)
		}
		if err := a.Session.Register(ctx, *name, *email, *password, choice); err != nil {
			return err
		}
		user := a.Session.User()
		fmt.Printf("registered as %s (%s), landing at %s\n", user.Name, user.Role, routing.HomePath(user.Role))
		return nil

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "email")
		password := fs.String("password", "", "password")
		fs.Parse(args)

		if errs := models.ValidateLoginForm(*email, *password); !errs.Ok() {
			return fmt.Errorf("invalid form: %v", errs)
		}
		if err := a.Session.Login(ctx, *email, *password); err != nil {
			return err
		}
		user := a.Session.User()
		fmt.Printf("welcome back, %s (%s)\n", user.Name, user.Role)
		return nil

	case "logout":
		a.Session.Logout()
		fmt.Println("logged out")
		return nil

	case "whoami":
		user := a.Session.User()
		if user == nil {
			fmt.Println("not logged in")
			return nil
		}
		fmt.Printf("%s <%s> role=%s\n", user.Name, user.Email, user.Role)
		return nil

	case "browse":
		page, err := a.Catalog.LoadStorefrontPage(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d shops, %d products, %d promotions, %d categories\n",
			len(page.Shops), len(page.Products), len(page.Promotions), len(page.Categories))
		for _, p := range page.Products {
			fmt.Printf("  product %s  %s  %s\n", p.ID, p.Name, p.Price.StringFixed(2))
		}
		return nil

	case "cart":
		return runCart(ctx, a, args)

	case "orders":
		return runOrders(ctx, a, args)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runCart(ctx context.Context, a *app.App, args []string) error {
	sub := "show"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("cart", flag.ExitOnError)
	product := fs.String("product", "", "product id")
	qty := fs.Int("qty", 1, "quantity")
	fs.Parse(args)

	switch sub {
	case "show":
		if err := a.Cart.Refresh(ctx); err != nil {
			return err
		}
	case "add":
		if err := a.Cart.AddItem(ctx, *product, *qty); err != nil {
			return err
		}
	case "set":
		if err := a.Cart.SetQuantity(ctx, *product, *qty); err != nil {
			return err
		}
	case "remove":
		if err := a.Cart.RemoveItem(ctx, *product); err != nil {
			return err
		}
	case "clear":
		if err := a.Cart.Clear(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown cart subcommand %q", sub)
	}

	c := a.Cart.Cart()
	if c == nil || len(c.Items) == 0 {
		fmt.Println("cart is empty")
		return nil
	}
	for _, it := range c.Items {
		fmt.Printf("  %dx %s @ %s\n", it.Quantity, it.Product.Name, it.Product.Price.StringFixed(2))
	}
	fmt.Printf("items: %d  total: %s\n", a.Cart.ItemCount(), a.Cart.TotalAmount().StringFixed(2))
	return nil
}

func runOrders(ctx context.Context, a *app.App, args []string) error {
	sub := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	address := fs.String("address", "", "shipping address")
	payment := fs.String("payment", "", "payment method")
	id := fs.String("id", "", "order id")
	fs.Parse(args)

	switch sub {
	case "list":
		list, err := a.Orders.List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("no orders")
			return nil
		}
		for _, o := range list {
			fmt.Printf("  %s  %s  %s\n", o.ID, o.Total.StringFixed(2), o.Status.DisplayLabel())
		}
		return nil
	case "place":
		order, err := a.Orders.Place(ctx, *address, *payment)
		if err != nil {
			return err
		}
		// the backend emptied the cart as part of the order; resync
		if err := a.Cart.Refresh(ctx); err != nil {
			return err
		}
		fmt.Printf("order %s placed, total %s, status %s\n", order.ID, order.Total.StringFixed(2), order.Status.DisplayLabel())
		return nil
	case "cancel":
		order, err := a.Orders.Cancel(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Printf("order %s is now %s\n", order.ID, order.Status.DisplayLabel())
		return nil
	default:
		return fmt.Errorf("unknown orders subcommand %q", sub)
	}
}
